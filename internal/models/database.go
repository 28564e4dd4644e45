package models

// GORM models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// JSONMap stores arbitrary key-value features as a JSON column.
type JSONMap map[string]interface{}

func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return "{}", nil
	}
	data, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func (m *JSONMap) Scan(value interface{}) error {
	if value == nil {
		*m = JSONMap{}
		return nil
	}

	switch v := value.(type) {
	case string:
		return json.Unmarshal([]byte(v), m)
	case []byte:
		return json.Unmarshal(v, m)
	default:
		return fmt.Errorf("cannot scan %T into JSONMap", value)
	}
}

// Base model with common fields
type BaseModel struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Product represents one catalog entry. Rows are created by the scraper or
// backup import and are read-only for the search pipeline.
type Product struct {
	BaseModel
	Title       string  `json:"title" gorm:"index;not null"`
	Price       float64 `json:"price"`
	Description string  `json:"description" gorm:"type:text"`
	Features    JSONMap `json:"features" gorm:"type:jsonb"`
	ImageURL    string  `json:"image_url"`
	Category    string  `json:"category" gorm:"index"`
	ProductURL  string  `json:"product_url" gorm:"unique"`
}

// ChatQuery represents chat request analytics
type ChatQuery struct {
	BaseModel
	QueryText      string    `json:"query_text" gorm:"not null"`
	UserSession    string    `json:"user_session"`
	ProductsCount  int       `json:"products_count" gorm:"default:0"`
	QueryTimestamp time.Time `json:"query_timestamp" gorm:"default:NOW()"`
	ResponseTimeMs int       `json:"response_time_ms"`
	UserAgent      string    `json:"user_agent"`
	IPAddress      string    `json:"ip_address" gorm:"type:inet"`
}

// SystemHealth represents service health monitoring
type SystemHealth struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	ServiceName    string    `json:"service_name" gorm:"not null"`
	Status         string    `json:"status" gorm:"not null;check:status IN ('healthy','degraded','unhealthy')"`
	ResponseTimeMs int       `json:"response_time_ms"`
	ErrorMessage   string    `json:"error_message"`
	CheckedAt      time.Time `json:"checked_at" gorm:"default:NOW()"`
}

// Database interfaces for repository pattern
type ProductRepository interface {
	Create(product *Product) error
	GetByID(id uint) (*Product, error)
	GetByIDs(ids []uint) ([]Product, error)
	GetByURL(productURL string) (*Product, error)
	GetAll() ([]Product, error)
	List(offset, limit int) ([]Product, error)
	FindByKeyword(query string, limit int) ([]Product, error)
	Count() (int64, error)
}

type ChatQueryRepository interface {
	Create(query *ChatQuery) error
	GetBySession(session string) ([]ChatQuery, error)
	GetRecent(limit int) ([]ChatQuery, error)
}

type SystemHealthRepository interface {
	UpdateServiceHealth(serviceName, status string, responseTime int, errorMsg string) error
	GetServiceHealth(serviceName string) (*SystemHealth, error)
	GetAllServicesHealth() ([]SystemHealth, error)
}

// TableName methods for custom table names
func (Product) TableName() string      { return "products" }
func (ChatQuery) TableName() string    { return "chat_queries" }
func (SystemHealth) TableName() string { return "system_health" }

// Model validation methods
func (p *Product) Validate() error {
	if p.Title == "" {
		return fmt.Errorf("product title is required")
	}
	if p.Price < 0 {
		return fmt.Errorf("product price cannot be negative")
	}
	if p.ProductURL == "" {
		return fmt.Errorf("product URL is required")
	}
	return nil
}

func (cq *ChatQuery) Validate() error {
	if cq.QueryText == "" {
		return fmt.Errorf("query text is required")
	}
	if cq.ResponseTimeMs < 0 {
		return fmt.Errorf("response time cannot be negative")
	}
	return nil
}

// GORM hooks
func (p *Product) BeforeCreate(tx *gorm.DB) error {
	return p.Validate()
}

func (cq *ChatQuery) BeforeCreate(tx *gorm.DB) error {
	return cq.Validate()
}
