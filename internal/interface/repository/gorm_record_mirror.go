package repository

import (
	"context"
	"fmt"
	"time"

	"travel-records-service/internal/domain/entity"
	"travel-records-service/internal/domain/repository"

	"gorm.io/gorm"
)

// GormRecordMirror keeps a copy of the record set in relational tables
type GormRecordMirror struct {
	db *gorm.DB
}

// NewGormRecordMirror creates a new GORM mirror and migrates its tables
func NewGormRecordMirror(db *gorm.DB) (repository.RecordMirror, error) {
	if err := db.AutoMigrate(&Clients{}, &Airlines{}, &Flights{}); err != nil {
		return nil, fmt.Errorf("failed to migrate mirror tables: %w", err)
	}
	return &GormRecordMirror{
		db: db,
	}, nil
}

// Clients GORM model for database mapping
type Clients struct {
	ID          uint   `gorm:"primaryKey;autoIncrement:false"`
	Name        string `gorm:"column:name"`
	PhoneNumber string `gorm:"column:phone_number"`
	Address1    string `gorm:"column:address_1"`
	Address2    string `gorm:"column:address_2"`
	Address3    string `gorm:"column:address_3"`
	City        string `gorm:"column:city;index"`
	State       string `gorm:"column:state"`
	ZipCode     string `gorm:"column:zip_code"`
	Country     string `gorm:"column:country"`
	SyncedAt    time.Time
}

// TableName overrides the default table name
func (Clients) TableName() string {
	return "m_clients"
}

// Airlines GORM model for database mapping
type Airlines struct {
	ID          uint   `gorm:"primaryKey;autoIncrement:false"`
	CompanyName string `gorm:"column:company_name"`
	SyncedAt    time.Time
}

// TableName overrides the default table name
func (Airlines) TableName() string {
	return "m_airlines"
}

// Flights GORM model for database mapping
type Flights struct {
	ID        uint   `gorm:"primaryKey;autoIncrement:false"`
	ClientID  uint   `gorm:"column:client_id;index"`
	AirlineID uint   `gorm:"column:airline_id;index"`
	Date      string `gorm:"column:date"`
	StartCity string `gorm:"column:start_city"`
	EndCity   string `gorm:"column:end_city"`
	SyncedAt  time.Time
}

// TableName overrides the default table name
func (Flights) TableName() string {
	return "m_flights"
}

// mirrorRows is the record set split per table
type mirrorRows struct {
	clients  []Clients
	airlines []Airlines
	flights  []Flights
}

func toMirrorRows(records []entity.Record, syncedAt time.Time) mirrorRows {
	var rows mirrorRows
	for _, rec := range records {
		switch v := rec.(type) {
		case entity.Client:
			rows.clients = append(rows.clients, Clients{
				ID:          uint(v.ID),
				Name:        v.Name,
				PhoneNumber: v.PhoneNumber,
				Address1:    v.Address1,
				Address2:    v.Address2,
				Address3:    v.Address3,
				City:        v.City,
				State:       v.State,
				ZipCode:     v.ZipCode,
				Country:     v.Country,
				SyncedAt:    syncedAt,
			})
		case entity.Airline:
			rows.airlines = append(rows.airlines, Airlines{
				ID:          uint(v.ID),
				CompanyName: v.CompanyName,
				SyncedAt:    syncedAt,
			})
		case entity.Flight:
			rows.flights = append(rows.flights, Flights{
				ID:        uint(v.ID),
				ClientID:  uint(v.ClientID),
				AirlineID: uint(v.AirlineID),
				Date:      v.Date,
				StartCity: v.StartCity,
				EndCity:   v.EndCity,
				SyncedAt:  syncedAt,
			})
		}
	}
	return rows
}

// Name identifies the mirror in logs
func (r *GormRecordMirror) Name() string {
	return "postgres"
}

// Sync replaces the content of the mirror tables in one transaction
func (r *GormRecordMirror) Sync(ctx context.Context, records []entity.Record) error {
	rows := toMirrorRows(records, time.Now())

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&Flights{}).Error; err != nil {
			return fmt.Errorf("failed to clear flights: %w", err)
		}
		if err := tx.Where("1 = 1").Delete(&Clients{}).Error; err != nil {
			return fmt.Errorf("failed to clear clients: %w", err)
		}
		if err := tx.Where("1 = 1").Delete(&Airlines{}).Error; err != nil {
			return fmt.Errorf("failed to clear airlines: %w", err)
		}

		if len(rows.clients) > 0 {
			if err := tx.CreateInBatches(rows.clients, 100).Error; err != nil {
				return fmt.Errorf("failed to insert clients: %w", err)
			}
		}
		if len(rows.airlines) > 0 {
			if err := tx.CreateInBatches(rows.airlines, 100).Error; err != nil {
				return fmt.Errorf("failed to insert airlines: %w", err)
			}
		}
		if len(rows.flights) > 0 {
			if err := tx.CreateInBatches(rows.flights, 100).Error; err != nil {
				return fmt.Errorf("failed to insert flights: %w", err)
			}
		}
		return nil
	})
}
