package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"patientms/internal/models"
)

type mongoPatientRepository struct {
	collection *mongo.Collection
}

// NewMongoPatientRepository stores one document per patient with the patient
// id as _id. created_at is only written on insert and drives listing order.
func NewMongoPatientRepository(db *mongo.Database) PatientRepository {
	return &mongoPatientRepository{collection: db.Collection("patients")}
}

func (r *mongoPatientRepository) Get(ctx context.Context, id string) (*models.Patient, error) {
	var patient models.Patient
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&patient)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get patient %s: %w", id, err)
	}
	return &patient, nil
}

func (r *mongoPatientRepository) Put(ctx context.Context, patient *models.Patient) error {
	now := time.Now()
	update := bson.M{
		"$set": bson.M{
			"name":       patient.Name,
			"city":       patient.City,
			"age":        patient.Age,
			"gender":     patient.Gender,
			"weight":     patient.Weight,
			"height":     patient.Height,
			"updated_at": now,
		},
		"$setOnInsert": bson.M{"created_at": now},
	}

	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": patient.ID}, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to save patient %s: %w", patient.ID, err)
	}
	return nil
}

func (r *mongoPatientRepository) Delete(ctx context.Context, id string) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete patient %s: %w", id, err)
	}
	if result.DeletedCount == 0 {
		return ErrRecordNotFound
	}
	return nil
}

func (r *mongoPatientRepository) List(ctx context.Context) ([]models.Patient, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list patients: %w", err)
	}
	defer cursor.Close(ctx)

	patients := []models.Patient{}
	if err := cursor.All(ctx, &patients); err != nil {
		return nil, fmt.Errorf("failed to decode patients: %w", err)
	}
	return patients, nil
}
