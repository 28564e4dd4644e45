package repository

import (
	"github.com/neusearch/neusearch/internal/models"
	"gorm.io/gorm"
)

// ProductRepositoryImpl implements ProductRepository
type ProductRepositoryImpl struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) models.ProductRepository {
	return &ProductRepositoryImpl{db: db}
}

func (r *ProductRepositoryImpl) Create(product *models.Product) error {
	return r.db.Create(product).Error
}

func (r *ProductRepositoryImpl) GetByID(id uint) (*models.Product, error) {
	var product models.Product
	err := r.db.First(&product, id).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// GetByIDs fetches products by id in a single query. Row order is
// storage-native; callers that care about ordering reorder themselves.
func (r *ProductRepositoryImpl) GetByIDs(ids []uint) ([]models.Product, error) {
	if len(ids) == 0 {
		return []models.Product{}, nil
	}
	var products []models.Product
	err := r.db.Where("id IN ?", ids).Find(&products).Error
	return products, err
}

func (r *ProductRepositoryImpl) GetByURL(productURL string) (*models.Product, error) {
	var product models.Product
	err := r.db.Where("product_url = ?", productURL).First(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *ProductRepositoryImpl) GetAll() ([]models.Product, error) {
	var products []models.Product
	err := r.db.Order("id").Find(&products).Error
	return products, err
}

func (r *ProductRepositoryImpl) List(offset, limit int) ([]models.Product, error) {
	var products []models.Product
	err := r.db.Order("id").
		Offset(offset).
		Limit(limit).
		Find(&products).Error
	return products, err
}

// FindByKeyword matches the query case-insensitively against title or
// description, capped at limit, in insertion order. No semantic ranking.
func (r *ProductRepositoryImpl) FindByKeyword(query string, limit int) ([]models.Product, error) {
	var products []models.Product
	pattern := "%" + query + "%"
	err := r.db.Where("title ILIKE ? OR description ILIKE ?", pattern, pattern).
		Order("id").
		Limit(limit).
		Find(&products).Error
	return products, err
}

func (r *ProductRepositoryImpl) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.Product{}).Count(&count).Error
	return count, err
}

// ChatQueryRepositoryImpl implements ChatQueryRepository
type ChatQueryRepositoryImpl struct {
	db *gorm.DB
}

func NewChatQueryRepository(db *gorm.DB) models.ChatQueryRepository {
	return &ChatQueryRepositoryImpl{db: db}
}

func (r *ChatQueryRepositoryImpl) Create(query *models.ChatQuery) error {
	return r.db.Create(query).Error
}

func (r *ChatQueryRepositoryImpl) GetBySession(session string) ([]models.ChatQuery, error) {
	var queries []models.ChatQuery
	err := r.db.Where("user_session = ?", session).
		Order("query_timestamp DESC").
		Find(&queries).Error
	return queries, err
}

func (r *ChatQueryRepositoryImpl) GetRecent(limit int) ([]models.ChatQuery, error) {
	var queries []models.ChatQuery
	err := r.db.Order("query_timestamp DESC").
		Limit(limit).
		Find(&queries).Error
	return queries, err
}

// SystemHealthRepositoryImpl implements SystemHealthRepository
type SystemHealthRepositoryImpl struct {
	db *gorm.DB
}

func NewSystemHealthRepository(db *gorm.DB) models.SystemHealthRepository {
	return &SystemHealthRepositoryImpl{db: db}
}

func (r *SystemHealthRepositoryImpl) UpdateServiceHealth(serviceName, status string, responseTime int, errorMsg string) error {
	return r.db.Exec(`
		INSERT INTO system_health (service_name, status, response_time_ms, error_message, checked_at)
		VALUES (?, ?, ?, ?, NOW())
	`, serviceName, status, responseTime, errorMsg).Error
}

func (r *SystemHealthRepositoryImpl) GetServiceHealth(serviceName string) (*models.SystemHealth, error) {
	var health models.SystemHealth
	err := r.db.Where("service_name = ?", serviceName).
		Order("checked_at DESC").
		First(&health).Error
	if err != nil {
		return nil, err
	}
	return &health, nil
}

func (r *SystemHealthRepositoryImpl) GetAllServicesHealth() ([]models.SystemHealth, error) {
	var health []models.SystemHealth
	err := r.db.Raw(`
		SELECT DISTINCT ON (service_name) *
		FROM system_health
		ORDER BY service_name, checked_at DESC
	`).Scan(&health).Error
	return health, err
}

// RepositoryManager bundles all repositories
type RepositoryManager struct {
	Product      models.ProductRepository
	ChatQuery    models.ChatQueryRepository
	SystemHealth models.SystemHealthRepository
}

func NewRepositoryManager(db *gorm.DB) *RepositoryManager {
	return &RepositoryManager{
		Product:      NewProductRepository(db),
		ChatQuery:    NewChatQueryRepository(db),
		SystemHealth: NewSystemHealthRepository(db),
	}
}
