package items

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

var errServiceUnavailable = errors.New("service unavailable")

type Service interface {
	CreateItem(ctx context.Context, userID string, req createItemRequest) (ID, error)
	GetItem(ctx context.Context, id ID) (*Item, error)
	ListItems(ctx context.Context) ([]*Item, error)
	ListUserItems(ctx context.Context, userID string) ([]*Item, error)
}

type Repository interface {
	Store(ctx context.Context, item *Item) error
	FindByID(ctx context.Context, id ID) (*Item, error)
	// FindAll returns all postings, newest first.
	FindAll(ctx context.Context) ([]*Item, error)
	FindByUser(ctx context.Context, userID string) ([]*Item, error)
}

type createItemRequest struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	ImageURLs   []string  `json:"imageUrl"`
	Category    string    `json:"category"`
	Location    string    `json:"location"`
	Date        time.Time `json:"date"`
	Time        string    `json:"time"`
	Kind        Kind      `json:"item"`
}

type service struct {
	items  Repository
	logger *zap.SugaredLogger
}

func NewService(items Repository, logger *zap.SugaredLogger) Service {
	return &service{items: items, logger: logger}
}

func (svc *service) CreateItem(ctx context.Context, userID string, req createItemRequest) (ID, error) {
	item, err := NewItem(userID, req.Title, req.Description, req.Category, req.Location, req.Time, req.Date, req.Kind, req.ImageURLs)
	if err != nil {
		return "", err
	}

	if err := svc.items.Store(ctx, item); err != nil {
		svc.logger.Errorw("storing item failed", "user", userID, "error", err)
		return "", errServiceUnavailable
	}

	svc.logger.Infow("item posted", "id", item.ID, "kind", item.Kind, "user", userID)
	return item.ID, nil
}

func (svc *service) GetItem(ctx context.Context, id ID) (*Item, error) {
	item, err := svc.items.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrItemNotFound) {
			return nil, ErrItemNotFound
		}
		svc.logger.Errorw("item lookup failed", "id", id, "error", err)
		return nil, errServiceUnavailable
	}
	return item, nil
}

func (svc *service) ListItems(ctx context.Context) ([]*Item, error) {
	list, err := svc.items.FindAll(ctx)
	if err != nil {
		svc.logger.Errorw("item listing failed", "error", err)
		return nil, errServiceUnavailable
	}
	return list, nil
}

func (svc *service) ListUserItems(ctx context.Context, userID string) ([]*Item, error) {
	list, err := svc.items.FindByUser(ctx, userID)
	if err != nil {
		svc.logger.Errorw("user item listing failed", "user", userID, "error", err)
		return nil, errServiceUnavailable
	}
	return list, nil
}
