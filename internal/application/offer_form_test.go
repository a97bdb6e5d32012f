package application

import (
	"strconv"
	"strings"
	"testing"

	"discount-offers-layer/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToDocumentAllProducts(t *testing.T) {
	form := OfferForm{
		Title:         "Summer Sale",
		TargetType:    FormTargetAllProducts,
		DiscountType:  domain.DiscountPercentage,
		DiscountValue: "20",
	}

	doc := ToDocument(form, "x.myshopify.com", NewOfferPathID)

	assert.Equal(t, "x.myshopify.com", doc.ShopDomain)
	assert.Equal(t, "Summer Sale", doc.Title)
	assert.Equal(t, domain.OfferStatusActive, doc.Status)
	assert.Equal(t, domain.TargetAll, doc.Target.TargetType)
	assert.Empty(t, doc.Target.Products)
	assert.Equal(t, domain.DiscountPercentage, doc.Discount.Kind)
	assert.Equal(t, 20.0, doc.Discount.Value)
	assert.True(t, strings.HasPrefix(doc.ID, "off_"))
	assert.Equal(t, domain.DefaultMetafieldNamespace, doc.Shopify.MetafieldNamespace)
	assert.False(t, doc.Shopify.MetafieldsApplied)
}

func TestToDocumentSpecificProduct(t *testing.T) {
	form := OfferForm{
		Title:            "Shirt Deal",
		TargetType:       FormTargetSpecificProduct,
		DiscountType:     domain.DiscountFixed,
		DiscountValue:    "5",
		ProductID:        "gid://shopify/Product/123",
		ProductTitle:     "Cool T-Shirt",
		ProductHandle:    "cool-t-shirt",
		ProductImage:     "https://cdn.example.com/shirt.png",
		ProductVariantID: "gid://shopify/ProductVariant/456",
	}

	doc := ToDocument(form, "x.myshopify.com", NewOfferPathID)

	assert.Equal(t, domain.TargetProduct, doc.Target.TargetType)
	require.Len(t, doc.Target.Products, 1)
	product := doc.Target.Products[0]
	assert.Equal(t, "gid://shopify/Product/123", product.ProductID)
	assert.Equal(t, "Cool T-Shirt", product.Title)
	assert.Equal(t, "cool-t-shirt", product.Handle)
	assert.Equal(t, "https://cdn.example.com/shirt.png", product.Image)
	assert.Equal(t, "gid://shopify/ProductVariant/456", product.VariantID)
}

func TestToDocumentWithoutProductIDBuildsNoProducts(t *testing.T) {
	form := OfferForm{
		Title:         "No Selection",
		TargetType:    FormTargetSpecificProduct,
		DiscountType:  domain.DiscountPercentage,
		DiscountValue: "10",
	}

	doc := ToDocument(form, "x.myshopify.com", NewOfferPathID)

	assert.Equal(t, domain.TargetProduct, doc.Target.TargetType)
	assert.Empty(t, doc.Target.Products)
}

func TestToDocumentReusesExistingID(t *testing.T) {
	form := OfferForm{Title: "Keep", TargetType: FormTargetAllProducts, DiscountValue: "10"}

	doc := ToDocument(form, "x.myshopify.com", "off_1734567890123_a8f3kl")

	assert.Equal(t, "off_1734567890123_a8f3kl", doc.ID)
}

func TestToDocumentDefaults(t *testing.T) {
	// The transform itself keeps the permissive source behavior: missing
	// or unparseable fields collapse to defaults. Callers validate first.
	doc := ToDocument(OfferForm{DiscountValue: "not-a-number"}, "x.myshopify.com", NewOfferPathID)

	assert.Equal(t, "Untitled Offer", doc.Title)
	assert.Equal(t, domain.OfferStatusActive, doc.Status)
	assert.Equal(t, domain.DiscountPercentage, doc.Discount.Kind)
	assert.Equal(t, 0.0, doc.Discount.Value)
}

func TestFormViewRoundTrip(t *testing.T) {
	forms := []OfferForm{
		{
			Title:         "Summer Sale",
			TargetType:    FormTargetAllProducts,
			DiscountType:  domain.DiscountPercentage,
			DiscountValue: "20",
		},
		{
			Title:            "Shirt Deal",
			TargetType:       FormTargetSpecificProduct,
			DiscountType:     domain.DiscountFixed,
			DiscountValue:    "5.5",
			ProductID:        "gid://shopify/Product/123",
			ProductTitle:     "Cool T-Shirt",
			ProductHandle:    "cool-t-shirt",
			ProductImage:     "https://cdn.example.com/shirt.png",
			ProductVariantID: "gid://shopify/ProductVariant/456",
		},
	}

	for _, form := range forms {
		t.Run(form.Title, func(t *testing.T) {
			got := ToFormView(ToDocument(form, "x.myshopify.com", NewOfferPathID))

			assert.Equal(t, form.Title, got.Title)
			assert.Equal(t, form.TargetType, got.TargetType)
			assert.Equal(t, form.DiscountType, got.DiscountType)
			assert.Equal(t, form.ProductID, got.ProductID)
			assert.Equal(t, form.ProductTitle, got.ProductTitle)
			assert.Equal(t, form.ProductVariantID, got.ProductVariantID)

			// Compare values numerically; formatting may differ
			want, err := strconv.ParseFloat(form.DiscountValue, 64)
			require.NoError(t, err)
			gotValue, err := strconv.ParseFloat(got.DiscountValue, 64)
			require.NoError(t, err)
			assert.Equal(t, want, gotValue)
		})
	}
}

func TestValidate(t *testing.T) {
	valid := OfferForm{
		Title:         "Summer Sale",
		TargetType:    FormTargetAllProducts,
		DiscountType:  domain.DiscountPercentage,
		DiscountValue: "20",
	}

	tests := []struct {
		name      string
		mutate    func(f *OfferForm)
		wantField string
	}{
		{
			name:   "valid form",
			mutate: func(f *OfferForm) {},
		},
		{
			name:      "missing title",
			mutate:    func(f *OfferForm) { f.Title = "   " },
			wantField: "title",
		},
		{
			name: "specific product without selection",
			mutate: func(f *OfferForm) {
				f.TargetType = FormTargetSpecificProduct
				f.ProductID = ""
			},
			wantField: "product",
		},
		{
			name:      "empty discount value",
			mutate:    func(f *OfferForm) { f.DiscountValue = "" },
			wantField: "discountValue",
		},
		{
			name:      "non-numeric discount value",
			mutate:    func(f *OfferForm) { f.DiscountValue = "twenty" },
			wantField: "discountValue",
		},
		{
			name:      "zero discount value",
			mutate:    func(f *OfferForm) { f.DiscountValue = "0" },
			wantField: "discountValue",
		},
		{
			name:      "percentage over 100",
			mutate:    func(f *OfferForm) { f.DiscountValue = "150" },
			wantField: "discountValue",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := valid
			tt.mutate(&form)

			err := form.Validate()
			if tt.wantField == "" {
				assert.Nil(t, err)
				return
			}
			require.NotNil(t, err)
			assert.Contains(t, err.Fields, tt.wantField)
		})
	}
}

func TestValidateFixedDiscountOver100(t *testing.T) {
	// Only percentages are capped at 100
	form := OfferForm{
		Title:         "Big Fixed",
		TargetType:    FormTargetAllProducts,
		DiscountType:  domain.DiscountFixed,
		DiscountValue: "150",
	}
	assert.Nil(t, form.Validate())
}

func TestNewOfferFormDefaults(t *testing.T) {
	form := NewOfferForm()
	assert.Equal(t, "", form.Title)
	assert.Equal(t, FormTargetAllProducts, form.TargetType)
	assert.Equal(t, domain.DiscountPercentage, form.DiscountType)
	assert.Equal(t, "", form.DiscountValue)
}
