package dataset

// Column names of the sales export.
const (
	ColOrderID         = "OrderID"
	ColCustomerID      = "CustomerID"
	ColProductID       = "ProductID"
	ColCategory        = "Category"
	ColSubCategory     = "SubCategory"
	ColBrand           = "Brand"
	ColRegion          = "Region"
	ColDevice          = "Device"
	ColPaymentMethod   = "PaymentMethod"
	ColAgeGroup        = "AgeGroup"
	ColPrice           = "Price"
	ColQuantity        = "Quantity"
	ColDiscountPercent = "DiscountPercent"
	ColFinalPrice      = "FinalPrice"
	ColReviewRating    = "ReviewRating"
	ColDeliveryDays    = "DeliveryDays"
	ColReturned        = "Returned"
	ColOrderDate       = "OrderDate"
	ColDeliveryStatus  = "DeliveryStatus"

	// Optional raw column binned into AgeGroup when AgeGroup is absent
	ColAge = "Age"

	// Derived columns
	ColRevenue       = "Revenue"
	ColRevenueCapped = "RevenueCapped"
	ColRevenueLog    = "RevenueLog"
	ColOrderWeekday  = "OrderWeekday"
	ColOrderMonth    = "OrderMonth"
	ColOrderCohort   = "OrderCohort"
	ColDeliverySpeed = "DeliverySpeed"
)

// FieldSpec declares the expected semantic type of a known column
type FieldSpec struct {
	Name string
	Type SemanticType
}

// Schema is an ordered list of expected columns
type Schema struct {
	Fields []FieldSpec
}

// SalesSchema is the 19-column layout of the sales export.
var SalesSchema = Schema{Fields: []FieldSpec{
	{ColOrderID, TypeIdentifier},
	{ColCustomerID, TypeIdentifier},
	{ColProductID, TypeIdentifier},
	{ColCategory, TypeCategorical},
	{ColSubCategory, TypeCategorical},
	{ColBrand, TypeCategorical},
	{ColRegion, TypeCategorical},
	{ColDevice, TypeCategorical},
	{ColPaymentMethod, TypeCategorical},
	{ColAgeGroup, TypeCategorical},
	{ColPrice, TypeNumeric},
	{ColQuantity, TypeNumeric},
	{ColDiscountPercent, TypeNumeric},
	{ColFinalPrice, TypeNumeric},
	{ColReviewRating, TypeNumeric},
	{ColDeliveryDays, TypeNumeric},
	{ColReturned, TypeNumeric},
	{ColOrderDate, TypeTimestamp},
	{ColDeliveryStatus, TypeCategorical},
}}

// Lookup returns the spec for a column name
func (s Schema) Lookup(name string) (FieldSpec, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldSpec{}, false
}

// Names returns the column names in schema order
func (s Schema) Names() []string {
	names := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		names[i] = f.Name
	}
	return names
}
