package database

import (
	"context"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"backend/internal/models"
)

// SeedProducts inserts the initial laboratory furniture catalog when the
// products collection is empty. Existing catalogs are left untouched.
func SeedProducts(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	count, err := db.Collection("products").CountDocuments(ctx, bson.M{})
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	seed := []interface{}{
		models.Product{
			Name:             "Lemari Asam Prosafeaire",
			Description:      "Lemari asam (Fume Hood) berkualitas tinggi standar ISO.",
			ShortDescription: "Fume Hood pelindung operator dari uap berbahaya.",
			ImageURL:         "/assets/img/lemariAsam.jpg",
			BasePrice:        25000000,
			Category:         "fume_hood",
			Materials:        models.StringList{"Multiplex 18mm", "Stainless Steel 304", "Polypropylene"},
			Sizes:            models.StringList{"1200 x 800 x 2400 mm", "1500 x 800 x 2400 mm", "1800 x 800 x 2400 mm"},
			Colors:           models.StringList{"Light Grey", "White", "Blue"},
			Features:         models.StringList{"Chemical Resistant", "Explosion Proof Lamp", "Digital Controller"},
			IsActive:         true,
			CreatedAt:        time.Now(),
		},
		models.Product{
			Name:             "Laminar Air Flow",
			Description:      "Meja kerja steril untuk inokulasi mikrobiologi.",
			ShortDescription: "Clean bench sterile work area.",
			ImageURL:         "/assets/img/laminarAirFlow.jpg",
			BasePrice:        18500000,
			Category:         "laminar_flow",
			Materials:        models.StringList{"Steel Powder Coating", "Stainless Steel 304"},
			Sizes:            models.StringList{"1200 mm", "1500 mm"},
			Colors:           models.StringList{"White"},
			Features:         models.StringList{"HEPA Filter H14", "UV Lamp", "Air Velocity Display"},
			IsActive:         true,
			CreatedAt:        time.Now(),
		},
		models.Product{
			Name:             "Fume Hood Scrubber Prosafeaire",
			Description:      "Sistem penyaring udara buangan lemari asam untuk menjaga kualitas udara lingkungan.",
			ShortDescription: "Air Purification System.",
			ImageURL:         "/assets/img/fumeHood.jpg",
			BasePrice:        20500000,
			Category:         "fume_hood",
			Materials:        models.StringList{"Steel Powder Coating", "Stainless Steel 304"},
			Sizes:            models.StringList{"1200 mm", "1500 mm"},
			Colors:           models.StringList{"White"},
			Features:         models.StringList{"HEPA Filter H14", "UV Lamp", "Air Velocity Display"},
			IsActive:         true,
			CreatedAt:        time.Now(),
		},
	}

	log.Println("SeedProducts: inserting initial catalog")
	if _, err := db.Collection("products").InsertMany(ctx, seed); err != nil {
		log.Println("SeedProducts: insert error:", err)
		return err
	}
	log.Println("SeedProducts: catalog seeded")
	return nil
}
