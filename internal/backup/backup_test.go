package backup

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/neusearch/neusearch/internal/models"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeProductRepo struct {
	products []models.Product
}

func (f *fakeProductRepo) Create(product *models.Product) error {
	product.ID = uint(len(f.products) + 1)
	f.products = append(f.products, *product)
	return nil
}

func (f *fakeProductRepo) GetByID(id uint) (*models.Product, error) {
	for _, p := range f.products {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeProductRepo) GetByIDs(ids []uint) ([]models.Product, error) {
	var out []models.Product
	for _, p := range f.products {
		for _, id := range ids {
			if p.ID == id {
				out = append(out, p)
			}
		}
	}
	return out, nil
}

func (f *fakeProductRepo) GetByURL(productURL string) (*models.Product, error) {
	for _, p := range f.products {
		if p.ProductURL == productURL {
			return &p, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeProductRepo) GetAll() ([]models.Product, error) {
	return f.products, nil
}

func (f *fakeProductRepo) List(offset, limit int) ([]models.Product, error) {
	return f.products, nil
}

func (f *fakeProductRepo) FindByKeyword(query string, limit int) ([]models.Product, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeProductRepo) Count() (int64, error) {
	return int64(len(f.products)), nil
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func TestExportImportRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "products_backup.json")

	source := &fakeProductRepo{products: []models.Product{
		{
			BaseModel:   models.BaseModel{ID: 1},
			Title:       "Core Leggings Black",
			Price:       1499,
			Description: "High waisted leggings.",
			Features:    models.JSONMap{"fabric": "nylon"},
			Category:    "Activewear",
			ProductURL:  "https://hunnit.com/products/core-leggings-black",
		},
		{
			BaseModel:  models.BaseModel{ID: 2},
			Title:      "Flex Sports Bra",
			Price:      999,
			Category:   "Activewear",
			ProductURL: "https://hunnit.com/products/flex-sports-bra",
		},
	}}

	exported, err := Export(source, path, testLogger())
	require.NoError(t, err)
	assert.Equal(t, 2, exported)

	target := &fakeProductRepo{}
	imported, err := Import(context.Background(), target, nil, path, testLogger())
	require.NoError(t, err)
	assert.Equal(t, 2, imported)

	restored, err := target.GetAll()
	require.NoError(t, err)
	require.Len(t, restored, 2)
	assert.Equal(t, "Core Leggings Black", restored[0].Title)
	assert.Equal(t, models.JSONMap{"fabric": "nylon"}, restored[0].Features)
}

func TestImportSkipsExistingURLs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "products_backup.json")

	source := &fakeProductRepo{products: []models.Product{
		{BaseModel: models.BaseModel{ID: 1}, Title: "Core Leggings", ProductURL: "https://hunnit.com/products/core-leggings"},
		{BaseModel: models.BaseModel{ID: 2}, Title: "Flex Sports Bra", ProductURL: "https://hunnit.com/products/flex-sports-bra"},
	}}

	_, err := Export(source, path, testLogger())
	require.NoError(t, err)

	target := &fakeProductRepo{products: []models.Product{
		{BaseModel: models.BaseModel{ID: 1}, Title: "Core Leggings", ProductURL: "https://hunnit.com/products/core-leggings"},
	}}

	imported, err := Import(context.Background(), target, nil, path, testLogger())
	require.NoError(t, err)
	assert.Equal(t, 1, imported)

	restored, _ := target.GetAll()
	assert.Len(t, restored, 2)
}

func TestImportMissingFile(t *testing.T) {
	_, err := Import(context.Background(), &fakeProductRepo{}, nil, filepath.Join(t.TempDir(), "missing.json"), testLogger())
	assert.Error(t, err)
}
