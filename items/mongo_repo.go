package items

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoItemRepository struct {
	collection *mongo.Collection
}

type dbItem struct {
	ID          ID        `bson:"_id"`
	Title       string    `bson:"title"`
	Description string    `bson:"description"`
	ImageURLs   []string  `bson:"imageUrl"`
	Category    string    `bson:"category"`
	Location    string    `bson:"location"`
	Date        time.Time `bson:"date"`
	Time        string    `bson:"time"`
	Kind        Kind      `bson:"Item"`
	UserID      string    `bson:"userId"`
	CreatedAt   time.Time `bson:"createdAt"`
}

func NewMongoItemRepository(c *mongo.Collection) Repository {
	return &mongoItemRepository{collection: c}
}

// EnsureItemIndexes backs the per-user listing.
func EnsureItemIndexes(ctx context.Context, c *mongo.Collection) error {
	_, err := c.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "userId", Value: 1}, {Key: "date", Value: -1}},
	})
	return err
}

func (m *mongoItemRepository) Store(ctx context.Context, item *Item) error {
	dbi := dbItemFromItem(item)
	_, err := m.collection.InsertOne(ctx, &dbi)
	return err
}

func (m *mongoItemRepository) FindByID(ctx context.Context, id ID) (*Item, error) {
	var dbi dbItem
	sr := m.collection.FindOne(ctx, bson.M{"_id": string(id)})
	if errors.Is(sr.Err(), mongo.ErrNoDocuments) {
		return nil, ErrItemNotFound
	}
	if err := sr.Decode(&dbi); err != nil {
		return nil, err
	}

	item := itemFromDBItem(dbi)
	return &item, nil
}

func (m *mongoItemRepository) FindAll(ctx context.Context) ([]*Item, error) {
	return m.findItemsBy(ctx, bson.M{})
}

func (m *mongoItemRepository) FindByUser(ctx context.Context, userID string) ([]*Item, error) {
	return m.findItemsBy(ctx, bson.M{"userId": userID})
}

func (m *mongoItemRepository) findItemsBy(ctx context.Context, filter bson.M) ([]*Item, error) {
	cur, err := m.collection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "date", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	list := []*Item{}
	for cur.Next(ctx) {
		var dbi dbItem
		if err := cur.Decode(&dbi); err != nil {
			return nil, err
		}
		item := itemFromDBItem(dbi)
		list = append(list, &item)
	}
	return list, cur.Err()
}

func dbItemFromItem(item *Item) dbItem {
	return dbItem{item.ID, item.Title, item.Description, item.ImageURLs, item.Category,
		item.Location, item.Date, item.Time, item.Kind, item.UserID, item.CreatedAt}
}

func itemFromDBItem(dbi dbItem) Item {
	return Item{dbi.ID, dbi.Title, dbi.Description, dbi.ImageURLs, dbi.Category,
		dbi.Location, dbi.Date, dbi.Time, dbi.Kind, dbi.UserID, dbi.CreatedAt}
}
