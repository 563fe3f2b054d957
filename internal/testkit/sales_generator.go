package testkit

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"salesaudit/domain/dataset"
)

// SalesGeneratorConfig configures the sales data generator
type SalesGeneratorConfig struct {
	Rows          int       `json:"rows"`
	CustomerCount int       `json:"customer_count"`
	ProductCount  int       `json:"product_count"`
	StartDate     time.Time `json:"start_date"`
	EndDate       time.Time `json:"end_date"`
	MissingRate   float64   `json:"missing_rate"`   // per optional cell
	DuplicateRate float64   `json:"duplicate_rate"` // share of rows reusing an earlier OrderID
	OutlierRate   float64   `json:"outlier_rate"`   // share of rows with a bulk quantity
	Seed          int64     `json:"seed"`
}

// DefaultSalesConfig returns the shape of the production export: ~25k rows
// over two years with a little dirt in it.
func DefaultSalesConfig() SalesGeneratorConfig {
	return SalesGeneratorConfig{
		Rows:          25000,
		CustomerCount: 5000,
		ProductCount:  800,
		StartDate:     time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:       time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC),
		MissingRate:   0.02,
		DuplicateRate: 0.005,
		OutlierRate:   0.01,
		Seed:          42,
	}
}

type category struct {
	name          string
	subCategories []string
	brands        []string
	priceLow      float64
	priceHigh     float64
	returnRate    float64
}

var categories = []category{
	{"Electronics", []string{"Phones", "Laptops", "Audio", "Cameras"}, []string{"Samsung", "Apple", "Sony", "Lenovo", "JBL"}, 80, 1500, 0.12},
	{"Fashion", []string{"Shoes", "Clothing", "Watches"}, []string{"Nike", "Adidas", "Puma", "Levis", "Fossil"}, 15, 250, 0.18},
	{"Home & Kitchen", []string{"Cookware", "Furniture", "Decor"}, []string{"Prestige", "Ikea", "Philips", "Bosch"}, 10, 600, 0.07},
	{"Books", []string{"Fiction", "Non-Fiction", "Comics"}, []string{"Penguin", "HarperCollins", "Marvel"}, 5, 60, 0.03},
	{"Beauty", []string{"Skincare", "Makeup", "Fragrance"}, []string{"Loreal", "Nivea", "Maybelline", "Lakme"}, 5, 120, 0.06},
	{"Sports", []string{"Fitness", "Outdoor", "Cycling"}, []string{"Decathlon", "Yonex", "Wilson", "Nike"}, 10, 400, 0.08},
}

var (
	regions          = []string{"North", "South", "East", "West", "Central"}
	devices          = []string{"Mobile", "Desktop", "Tablet"}
	deviceReturnLift = map[string]float64{"Mobile": 1.3, "Desktop": 0.8, "Tablet": 1.0}
	paymentMethods   = []string{"Credit Card", "Debit Card", "UPI", "Net Banking", "Cash on Delivery", "Wallet"}
	ageGroups        = []string{"18-25", "26-35", "36-45", "46-55", "55+"}
	discountLevels   = []float64{0, 5, 10, 15, 20, 25, 30, 40, 50}
)

// SalesDataGenerator generates synthetic sales exports in the 19-column layout
type SalesDataGenerator struct {
	config SalesGeneratorConfig
	rng    *rand.Rand
}

// NewSalesDataGenerator creates a new sales data generator
func NewSalesDataGenerator(config SalesGeneratorConfig) *SalesDataGenerator {
	if config.CustomerCount <= 0 {
		config.CustomerCount = 1
	}
	if config.ProductCount <= 0 {
		config.ProductCount = 1
	}
	return &SalesDataGenerator{
		config: config,
		rng:    rand.New(rand.NewSource(config.Seed)),
	}
}

// Records returns the header followed by one record per generated order
func (g *SalesDataGenerator) Records() [][]string {
	records := make([][]string, 0, g.config.Rows+1)
	records = append(records, dataset.SalesSchema.Names())

	for i := 0; i < g.config.Rows; i++ {
		orderID := fmt.Sprintf("ORD%07d", i+1)
		if i > 0 && g.rng.Float64() < g.config.DuplicateRate {
			// re-exported order: same key, fresh attributes
			orderID = fmt.Sprintf("ORD%07d", g.rng.Intn(i)+1)
		}
		records = append(records, g.order(orderID))
	}
	return records
}

// order builds one record in SalesSchema column order
func (g *SalesDataGenerator) order(orderID string) []string {
	cat := categories[g.rng.Intn(len(categories))]
	device := devices[g.rng.Intn(len(devices))]

	price := round2(cat.priceLow + g.rng.Float64()*(cat.priceHigh-cat.priceLow))
	discount := discountLevels[g.rng.Intn(len(discountLevels))]

	// deeper discounts move a little more volume
	quantity := 1 + g.rng.Intn(3)
	if g.rng.Float64() < discount/100 {
		quantity += 1 + g.rng.Intn(2)
	}
	if g.rng.Float64() < g.config.OutlierRate {
		quantity = 20 + g.rng.Intn(80)
	}
	finalPrice := round2(price * (1 - discount/100))

	returned := 0
	if g.rng.Float64() < cat.returnRate*deviceReturnLift[device] {
		returned = 1
	}

	deliveryDays := 1 + int(math.Abs(g.rng.NormFloat64()*2.5)) + g.rng.Intn(3)
	deliveryStatus := "Delivered"
	switch {
	case deliveryDays > 7:
		deliveryStatus = "Delayed"
	case g.rng.Float64() < 0.02:
		deliveryStatus = "Cancelled"
	}

	rating := 1 + g.rng.Intn(5)
	if returned == 1 && rating > 2 {
		rating -= 2
	}

	span := g.config.EndDate.Sub(g.config.StartDate)
	orderDate := g.config.StartDate.Add(time.Duration(g.rng.Int63n(int64(span) + 1))).Truncate(24 * time.Hour)

	return []string{
		orderID,
		fmt.Sprintf("CUST%05d", g.rng.Intn(g.config.CustomerCount)+1),
		fmt.Sprintf("PROD%04d", g.rng.Intn(g.config.ProductCount)+1),
		cat.name,
		cat.subCategories[g.rng.Intn(len(cat.subCategories))],
		cat.brands[g.rng.Intn(len(cat.brands))],
		regions[g.rng.Intn(len(regions))],
		device,
		g.maybeMissing(paymentMethods[g.rng.Intn(len(paymentMethods))]),
		g.maybeMissing(ageGroups[g.rng.Intn(len(ageGroups))]),
		strconv.FormatFloat(price, 'f', 2, 64),
		strconv.Itoa(quantity),
		strconv.FormatFloat(discount, 'f', -1, 64),
		strconv.FormatFloat(finalPrice, 'f', 2, 64),
		g.maybeMissing(strconv.Itoa(rating)),
		g.maybeMissing(strconv.Itoa(deliveryDays)),
		strconv.Itoa(returned),
		orderDate.Format("2006-01-02"),
		g.maybeMissing(deliveryStatus),
	}
}

func (g *SalesDataGenerator) maybeMissing(v string) string {
	if g.rng.Float64() < g.config.MissingRate {
		return ""
	}
	return v
}

// WriteCSV writes the generated records as CSV
func (g *SalesDataGenerator) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(g.Records()); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

// WriteCSVFile generates a dataset into path, creating parent directories
func WriteCSVFile(path string, config SalesGeneratorConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := NewSalesDataGenerator(config).WriteCSV(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
