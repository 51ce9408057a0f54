package database

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/mercatto/marketplace-api/internal/domain"
	"github.com/mercatto/marketplace-api/internal/observability"
	"github.com/mercatto/marketplace-api/internal/security"
)

// demoSellerPassword is only ever written to development databases by the
// seed tool. It satisfies the registration password policy so the seeded
// accounts can log in through the normal flow.
const demoSellerPassword = "Mercatto-Dev-Pass-1!"

type demoSeller struct {
	Email    string
	Name     string
	Products []domain.Product
}

var demoCatalog = []demoSeller{
	{
		Email: "electronics@mercatto.dev",
		Name:  "Electro Depot",
		Products: []domain.Product{
			{Title: "A plasma TV", Price: 100, Published: true},
			{Title: "LCD TV", Price: 50, Published: true},
			{Title: "Fastest Laptop", Price: 150, Published: true},
		},
	},
	{
		Email: "general@mercatto.dev",
		Name:  "General Goods",
		Products: []domain.Product{
			{Title: "Videogame console", Price: 99, Published: true},
			{Title: "Comfortable chairs", Price: 70, Published: false},
		},
	},
}

type SeedReport struct {
	CreatedUsers    int  `json:"created_users"`
	CreatedProducts int  `json:"created_products"`
	Noop            bool `json:"noop"`
}

func Seed(db *gorm.DB) error {
	_, err := SeedSync(db)
	return err
}

// SeedSync loads the demo sellers and their catalog. It is idempotent: rows
// already present are left untouched and the report says what was created.
func SeedSync(db *gorm.DB) (*SeedReport, error) {
	start := time.Now()
	defer func() {
		observability.RecordDatabaseStartupDuration(context.Background(), "seed", time.Since(start))
	}()

	report := &SeedReport{}

	for _, seller := range demoCatalog {
		user := domain.User{Email: seller.Email, Name: seller.Name}
		res := db.Where("email = ?", user.Email).First(&user)
		if res.Error != nil {
			if res.Error != gorm.ErrRecordNotFound {
				observability.RecordDatabaseStartupEvent(context.Background(), "seed", "error")
				return nil, res.Error
			}
			hash, err := security.HashPassword(demoSellerPassword)
			if err != nil {
				observability.RecordDatabaseStartupEvent(context.Background(), "seed", "error")
				return nil, err
			}
			user.PasswordHash = hash
			if err := db.Create(&user).Error; err != nil {
				observability.RecordDatabaseStartupEvent(context.Background(), "seed", "error")
				return nil, fmt.Errorf("create seed user %s: %w", user.Email, err)
			}
			report.CreatedUsers++
		}

		for _, product := range seller.Products {
			product.UserID = user.ID
			res := db.Where("user_id = ? AND title = ?", user.ID, product.Title).FirstOrCreate(&product)
			if res.Error != nil {
				observability.RecordDatabaseStartupEvent(context.Background(), "seed", "error")
				return nil, fmt.Errorf("create seed product %q: %w", product.Title, res.Error)
			}
			if res.RowsAffected > 0 {
				report.CreatedProducts++
			}
		}
	}

	report.Noop = report.CreatedUsers == 0 && report.CreatedProducts == 0
	observability.RecordDatabaseStartupEvent(context.Background(), "seed", "success")
	return report, nil
}
