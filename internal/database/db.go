package database

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

// DSN builds the MySQL data source name.  loc is the restaurant time zone:
// DATETIME columns hold civil restaurant times and parseTime=true turns
// them into time.Time values in that zone.
func DSN(user, pass, host, port, name string, loc *time.Location) string {
	auth := user
	if pass != "" {
		auth = fmt.Sprintf("%s:%s", user, pass)
	}
	if loc == nil {
		loc = time.UTC
	}
	return fmt.Sprintf("%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=true&loc=%s",
		auth, host, port, name, url.QueryEscape(loc.String()))
}

// Open connects to MySQL and verifies the connection.
func Open(user, pass, host, port, name string, loc *time.Location) (*sql.DB, error) {
	db, err := sql.Open("mysql", DSN(user, pass, host, port, name, loc))
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	db.SetConnMaxIdleTime(5 * time.Minute)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping mysql at %s:%s: %w", host, port, err)
	}
	return db, nil
}
