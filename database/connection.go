package database

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Database wraps the raw connection and the ORM handle built on top of it.
type Database struct {
	conn *sql.DB
	orm  *gorm.DB
}

// Connect opens a PostgreSQL connection with pool tuning and layers gorm
// over the same connection.
func Connect(host string, port int, name, user, password string) (*Database, error) {
	connStr := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, name,
	)

	conn, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	conn.SetMaxOpenConns(25)
	conn.SetMaxIdleConns(10)
	conn.SetConnMaxLifetime(5 * time.Minute)
	conn.SetConnMaxIdleTime(2 * time.Minute)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	orm, err := gorm.Open(postgres.New(postgres.Config{Conn: conn}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to initialize ORM: %w", err)
	}

	log.Println("✅ Database connection established")
	return &Database{conn: conn, orm: orm}, nil
}

// Close closes the database connection.
func (db *Database) Close() error {
	if db != nil && db.conn != nil {
		log.Println("📡 Closing database connection...")
		return db.conn.Close()
	}
	return nil
}

// Ping checks if the database connection is alive.
func (db *Database) Ping() error {
	return db.conn.Ping()
}
