package config

import (
	"database/sql"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/yourusername/mm1q-sweep/db/schemas/trials/models"
	"github.com/yourusername/mm1q-sweep/log"
)

type DBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

func LoadDBConfig() DBConfig {
	_ = godotenv.Load()

	return DBConfig{
		Host:     os.Getenv("DB_HOST"),
		Port:     os.Getenv("DB_PORT"),
		User:     os.Getenv("DB_USER"),
		Password: os.Getenv("DB_PASSWORD"),
		DBName:   os.Getenv("DB_NAME"),
	}
}

// DSN returns the connection string for dbname on the configured server.
func (cfg DBConfig) DSN(dbname string) string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, dbname,
	)
}

func DropAndRecreateDatabase(cfg DBConfig) error {
	adminDB, err := sql.Open("postgres", cfg.DSN("postgres"))
	if err != nil {
		return fmt.Errorf("failed to connect to admin DB: %w", err)
	}
	defer adminDB.Close()

	// Terminate any active connections
	_, _ = adminDB.Exec(`
		SELECT pg_terminate_backend(pid)
		FROM pg_stat_activity
		WHERE datname = $1 AND pid <> pg_backend_pid();`, cfg.DBName)

	quotedDBName := fmt.Sprintf(`"%s"`, cfg.DBName)

	if _, err = adminDB.Exec(`DROP DATABASE IF EXISTS ` + quotedDBName); err != nil {
		return fmt.Errorf("failed to drop database: %w", err)
	}
	if _, err = adminDB.Exec(`CREATE DATABASE ` + quotedDBName); err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}

	log.Infow("dropped and recreated database", "db", cfg.DBName)
	return nil
}

func ConnectDB() (*gorm.DB, error) {
	cfg := LoadDBConfig()

	db, err := gorm.Open(postgres.Open(cfg.DSN(cfg.DBName)), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// ResetDatabase drops every table in the public schema and recreates the
// trial tables.
func ResetDatabase(db *gorm.DB) error {
	if err := ResetSchema(db); err != nil {
		return err
	}
	if err := ConfirmNoTables(db); err != nil {
		return err
	}
	return db.AutoMigrate(&models.SweepTask{}, &models.Trial{})
}

func ResetSchema(db *gorm.DB) error {
	if err := db.Exec("DROP SCHEMA public CASCADE").Error; err != nil {
		return err
	}
	if err := db.Exec("CREATE SCHEMA public").Error; err != nil {
		return err
	}
	log.Info("dropped and recreated public schema")
	return nil
}

func ConfirmNoTables(db *gorm.DB) error {
	var tables []string
	if err := db.Raw(`SELECT tablename FROM pg_tables WHERE schemaname = 'public'`).Scan(&tables).Error; err != nil {
		return fmt.Errorf("failed to query tables: %w", err)
	}
	if len(tables) > 0 {
		return fmt.Errorf("tables still exist after reset: %v", tables)
	}
	return nil
}
