package db

// RunMigrations runs all database migrations
func RunMigrations(db *DB) error {
	return db.AutoMigrate(
		&User{},
		&Book{},
		&Order{},
		&OrderItem{},
	)
}
