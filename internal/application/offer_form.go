package application

import (
	"strconv"
	"strings"

	"discount-offers-layer/internal/domain"
)

// Target type labels exchanged with the edit form. The form speaks human
// labels; stored documents use the short enum values.
const (
	FormTargetAllProducts     = "all products"
	FormTargetSpecificProduct = "specific product"
	FormTargetCollection      = "collection"
)

// NewOfferPathID is the path segment the edit form uses for an offer that
// does not exist yet.
const NewOfferPathID = "new"

// OfferForm is the flat key-value representation the edit form exchanges
// with the server, as opposed to the nested persisted document.
type OfferForm struct {
	ID               string `json:"id,omitempty"`
	Title            string `json:"title"`
	Status           string `json:"status,omitempty"`
	TargetType       string `json:"targetType"`
	DiscountType     string `json:"discountType"`
	DiscountValue    string `json:"discountValue"`
	ProductID        string `json:"productId,omitempty"`
	ProductTitle     string `json:"productTitle,omitempty"`
	ProductHandle    string `json:"productHandle,omitempty"`
	ProductImage     string `json:"productImage,omitempty"`
	ProductVariantID string `json:"productVariantId,omitempty"`
}

// NewOfferForm returns the defaults the edit form starts from for "new".
func NewOfferForm() OfferForm {
	return OfferForm{
		Title:         "",
		TargetType:    FormTargetAllProducts,
		DiscountType:  domain.DiscountPercentage,
		DiscountValue: "",
	}
}

// Validate checks the form the same way the edit form does before saving.
// It returns nil when the form is saveable.
func (f OfferForm) Validate() *domain.ValidationError {
	fields := map[string]string{}

	if strings.TrimSpace(f.Title) == "" {
		fields["title"] = "Title is required"
	}

	if f.TargetType == FormTargetSpecificProduct && f.ProductID == "" {
		fields["product"] = "Please select a product"
	}

	value, err := strconv.ParseFloat(f.DiscountValue, 64)
	if f.DiscountValue == "" || err != nil || value <= 0 {
		fields["discountValue"] = "Please enter a valid discount value"
	} else if f.DiscountType == domain.DiscountPercentage && value > 100 {
		fields["discountValue"] = "Percentage cannot exceed 100%"
	}

	if len(fields) > 0 {
		return &domain.ValidationError{Fields: fields}
	}
	return nil
}

// ToFormView flattens a stored offer into the edit form representation.
// Only the first product of a specific-product target is surfaced; the form
// supports a single selection.
func ToFormView(offer *domain.Offer) OfferForm {
	form := OfferForm{
		ID:            offer.ID,
		Title:         offer.Title,
		Status:        offer.Status,
		DiscountType:  offer.Discount.Kind,
		DiscountValue: strconv.FormatFloat(offer.Discount.Value, 'f', -1, 64),
	}

	switch offer.Target.TargetType {
	case domain.TargetAll:
		form.TargetType = FormTargetAllProducts
	case domain.TargetProduct:
		form.TargetType = FormTargetSpecificProduct
	default:
		form.TargetType = FormTargetCollection
	}

	if offer.Target.TargetType == domain.TargetProduct && len(offer.Target.Products) > 0 {
		product := offer.Target.Products[0]
		form.ProductID = product.ProductID
		form.ProductTitle = product.Title
		form.ProductHandle = product.Handle
		form.ProductImage = product.Image
		form.ProductVariantID = product.VariantID
	}

	return form
}

// ToDocument rebuilds the nested offer document from the flat form. A new
// id is generated when existingID is "new"; otherwise the id is reused.
// An unparseable discount value becomes 0 here; callers that care validate
// the form before transforming.
func ToDocument(form OfferForm, shopDomain, existingID string) *domain.Offer {
	var targetType string
	switch form.TargetType {
	case FormTargetAllProducts:
		targetType = domain.TargetAll
	case FormTargetSpecificProduct:
		targetType = domain.TargetProduct
	default:
		targetType = domain.TargetCollection
	}

	var products []domain.ProductTarget
	if targetType == domain.TargetProduct && form.ProductID != "" {
		products = append(products, domain.ProductTarget{
			ProductID: form.ProductID,
			Title:     form.ProductTitle,
			Handle:    form.ProductHandle,
			Image:     form.ProductImage,
			VariantID: form.ProductVariantID,
		})
	}

	id := existingID
	if id == NewOfferPathID || id == "" {
		id = domain.NewOfferID()
	}

	title := form.Title
	if title == "" {
		title = "Untitled Offer"
	}
	status := form.Status
	if status == "" {
		status = domain.OfferStatusActive
	}
	discountType := form.DiscountType
	if discountType == "" {
		discountType = domain.DiscountPercentage
	}

	value, _ := strconv.ParseFloat(form.DiscountValue, 64)

	return &domain.Offer{
		ID:         id,
		ShopDomain: shopDomain,
		Title:      title,
		Status:     status,
		Target: domain.Target{
			TargetType:  targetType,
			Products:    products,
			Collections: []domain.CollectionTarget{},
		},
		Discount: domain.Discount{
			Kind:  discountType,
			Value: value,
		},
		Shopify: domain.ShopifyIntegration{
			MetafieldNamespace: domain.DefaultMetafieldNamespace,
			MetafieldKey:       domain.DefaultMetafieldKey,
			MetafieldsApplied:  false,
		},
	}
}
