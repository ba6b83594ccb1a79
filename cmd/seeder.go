package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with sample data for development and testing purposes.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		sqlxDB, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}

		db, err := gorm.Open(gormpostgres.New(gormpostgres.Config{Conn: sqlxDB.DB}), &gorm.Config{})
		if err != nil {
			log.Fatalf("failed to init gorm: %v", err)
		}

		password := "password"
		hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)

		seedUser(db, "admin@library.local", "Library Admin", string(hash))
		seedUser(db, "member@library.local", "Sample Member", string(hash))

		permissions := []struct {
			Name string
			Desc string
		}{
			{"create_books", "Can add books to the catalog"},
			{"update_books", "Can edit books and close any reservation"},
			{"delete_books", "Can deactivate books"},
			{"update_users", "Can edit any user and grant capabilities"},
			{"delete_users", "Can deactivate any user"},
		}

		for _, p := range permissions {
			var pid int64
			row := db.Raw("SELECT id FROM permissions WHERE name = ?", p.Name).Row()
			if err := row.Scan(&pid); err != nil {
				if err := db.Exec("INSERT INTO permissions (name, description, created_at) VALUES (?, ?, now())", p.Name, p.Desc).Error; err != nil {
					log.Fatalf("failed to insert permission %s: %v", p.Name, err)
				}
			}
		}

		var adminUserID int64
		if err := db.Raw("SELECT id FROM users WHERE email = ?", "admin@library.local").Row().Scan(&adminUserID); err != nil {
			log.Fatalf("failed to lookup admin user id: %v", err)
		}

		for _, p := range permissions {
			var pid int64
			if err := db.Raw("SELECT id FROM permissions WHERE name = ?", p.Name).Row().Scan(&pid); err != nil {
				log.Fatalf("permission not found after insert %s: %v", p.Name, err)
			}

			var exists int
			if err := db.Raw("SELECT 1 FROM user_permissions WHERE user_id = ? AND permission_id = ?", adminUserID, pid).Row().Scan(&exists); err == nil {
				continue
			}

			if err := db.Exec("INSERT INTO user_permissions (user_id, permission_id) VALUES (?, ?)", adminUserID, pid).Error; err != nil {
				log.Fatalf("failed to grant permission %s to admin user: %v", p.Name, err)
			}
		}

		fmt.Println("Granted all permissions to admin user: admin@library.local")

		books := []struct {
			Title     string
			Author    string
			Genre     string
			Publisher string
			ISBN      string
			Copies    int
		}{
			{"The Name of the Wind", "Patrick Rothfuss", "Fantasy", "DAW Books", "9780756404741", 3},
			{"A Brief History of Time", "Stephen Hawking", "Non-fiction", "Bantam", "9780553380163", 2},
			{"The Hound of the Baskervilles", "Arthur Conan Doyle", "Mystery", "George Newnes", "9780199536962", 1},
		}

		for _, b := range books {
			var exists int
			row := db.Raw("SELECT 1 FROM books WHERE isbn = ?", b.ISBN).Row()
			if err := row.Scan(&exists); err != nil {
				err := db.Exec(
					`INSERT INTO books (title, author, genre, published_date, publisher, isbn, total_copies, available_copies, is_active, created_by, created_at, updated_at)
					 VALUES (?, ?, ?, '2000-01-01', ?, ?, ?, ?, true, ?, now(), now())`,
					b.Title, b.Author, b.Genre, b.Publisher, b.ISBN, b.Copies, b.Copies, adminUserID,
				).Error
				if err != nil {
					log.Fatalf("failed to insert book %s: %v", b.Title, err)
				}
				fmt.Printf("Seeded book: %s\n", b.Title)
			}
		}

		fmt.Println("Seeding finished")
	},
}

func seedUser(db *gorm.DB, email, name, passwordHash string) {
	var exists int
	if err := db.Raw("SELECT 1 FROM users WHERE email = ?", email).Row().Scan(&exists); err == nil {
		fmt.Printf("user %s already exists; skipping\n", email)
		return
	}

	if err := db.Exec(
		"INSERT INTO users (email, name, password_hash, is_active, created_at, updated_at) VALUES (?, ?, ?, true, now(), now())",
		email, name, passwordHash,
	).Error; err != nil {
		log.Fatalf("failed to insert user %s: %v", email, err)
	}
	fmt.Println("Seeded user:", email)
}
