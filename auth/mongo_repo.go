package auth

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoAccountRepository struct {
	collection *mongo.Collection
}

// dbAccount is the stored document layout. Field names match what the
// web client has always written, capitalization included.
type dbAccount struct {
	ID                     ID     `bson:"_id"`
	Username               string `bson:"username"`
	Email                  string `bson:"email"`
	Password               string `bson:"password"`
	AdmissionNumber        string `bson:"AdmissionNumber"`
	Hostel                 string `bson:"Hostel"`
	NeedsProfileCompletion bool   `bson:"needsProfileCompletion"`
	LostOrFound            []ID   `bson:"LostOrFound"`
	CreatedAt              time.Time
}

func NewMongoAccountRepository(c *mongo.Collection) Repository {
	return &mongoAccountRepository{collection: c}
}

// EnsureAccountIndexes creates the unique indexes that are the actual
// authority on uniqueness; service-level pre-checks only improve the
// error messages. The admission-number index is partial so any number
// of placeholder accounts can share the pending sentinel.
func EnsureAccountIndexes(ctx context.Context, c *mongo.Collection) error {
	_, err := c.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "username", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "AdmissionNumber", Value: 1}},
			Options: options.Index().SetUnique(true).
				SetPartialFilterExpression(bson.M{"needsProfileCompletion": bson.M{"$eq": false}}),
		},
	})
	return err
}

func (m *mongoAccountRepository) FindByID(ctx context.Context, id ID) (*Account, error) {
	return m.findAccountBy(ctx, bson.M{"_id": string(id)})
}

func (m *mongoAccountRepository) FindByUsername(ctx context.Context, username string) (*Account, error) {
	return m.findAccountBy(ctx, bson.M{"username": username})
}

func (m *mongoAccountRepository) FindByEmail(ctx context.Context, email string) (*Account, error) {
	return m.findAccountBy(ctx, bson.M{"email": email})
}

func (m *mongoAccountRepository) FindByAdmissionNumber(ctx context.Context, admissionNumber string) (*Account, error) {
	return m.findAccountBy(ctx, bson.M{
		"AdmissionNumber":        admissionNumber,
		"needsProfileCompletion": false,
	})
}

func (m *mongoAccountRepository) FindConflict(ctx context.Context, username, email, admissionNumber string) (*Account, error) {
	return m.findAccountBy(ctx, bson.M{"$or": []bson.M{
		{"username": username},
		{"email": email},
		{"AdmissionNumber": admissionNumber, "needsProfileCompletion": false},
	}})
}

func (m *mongoAccountRepository) findAccountBy(ctx context.Context, filter bson.M) (*Account, error) {
	var dba dbAccount
	sr := m.collection.FindOne(ctx, filter)
	if errors.Is(sr.Err(), mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err := sr.Decode(&dba); err != nil {
		return nil, err
	}

	acc := accountFromDBAccount(dba)
	return &acc, nil
}

func (m *mongoAccountRepository) Store(ctx context.Context, acc *Account) error {
	dba := dbAccountFromAccount(acc)
	if _, err := m.collection.InsertOne(ctx, &dba); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return errDuplicateKey
		}
		return err
	}
	return nil
}

func (m *mongoAccountRepository) CompleteProfile(ctx context.Context, email, admissionNumber, hostel string) error {
	res, err := m.collection.UpdateOne(ctx, bson.M{"email": email}, bson.M{"$set": bson.M{
		"AdmissionNumber":        admissionNumber,
		"Hostel":                 hostel,
		"needsProfileCompletion": false,
	}})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return errDuplicateKey
		}
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func dbAccountFromAccount(acc *Account) dbAccount {
	return dbAccount{
		ID:                     acc.ID,
		Username:               acc.Username,
		Email:                  acc.Email,
		Password:               acc.PasswordHash,
		AdmissionNumber:        acc.AdmissionNumber,
		Hostel:                 acc.Hostel,
		NeedsProfileCompletion: acc.NeedsProfileCompletion,
		LostOrFound:            []ID{},
		CreatedAt:              acc.CreatedAt,
	}
}

func accountFromDBAccount(dba dbAccount) Account {
	return Account{
		ID:                     dba.ID,
		Username:               dba.Username,
		Email:                  dba.Email,
		PasswordHash:           dba.Password,
		AdmissionNumber:        dba.AdmissionNumber,
		Hostel:                 dba.Hostel,
		NeedsProfileCompletion: dba.NeedsProfileCompletion,
		CreatedAt:              dba.CreatedAt,
	}
}
