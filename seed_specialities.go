package main

import (
	"log"

	"cureliah-server/database"
	"cureliah-server/models"
)

func seedSpecialities() error {
	db := database.GetDB()

	specialities := []models.Speciality{
		{Name: "Médecine générale", Code: "general", IsActive: true, SortOrder: 1},
		{Name: "Cardiologie", Code: "cardiology", IsActive: true, SortOrder: 2},
		{Name: "Dermatologie", Code: "dermatology", IsActive: true, SortOrder: 3},
		{Name: "Pédiatrie", Code: "pediatrics", IsActive: true, SortOrder: 4},
		{Name: "Psychiatrie", Code: "psychiatry", IsActive: true, SortOrder: 5},
		{Name: "Radiologie", Code: "radiology", IsActive: true, SortOrder: 6},
		{Name: "Anesthésie-réanimation", Code: "anesthesiology", IsActive: true, SortOrder: 7},
		{Name: "Gériatrie", Code: "geriatrics", IsActive: true, SortOrder: 8},
		{Name: "Médecine d'urgence", Code: "emergency", IsActive: true, SortOrder: 9},
		{Name: "Gynécologie-obstétrique", Code: "gynecology", IsActive: true, SortOrder: 10},
		{Name: "Ophtalmologie", Code: "ophthalmology", IsActive: true, SortOrder: 11},
		{Name: "Chirurgie générale", Code: "surgery", IsActive: true, SortOrder: 12},
	}

	for _, speciality := range specialities {
		var existing models.Speciality
		if err := db.Where("code = ?", speciality.Code).First(&existing).Error; err == nil {
			continue
		}
		if err := db.Create(&speciality).Error; err != nil {
			return err
		}
		log.Printf("✅ Seeded speciality: %s", speciality.Name)
	}

	return nil
}
