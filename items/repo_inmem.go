package items

import (
	"context"
	"sort"
	"sync"
)

type itemRepository struct {
	mu    sync.RWMutex
	items map[ID]*Item
}

func NewItemRepository() Repository {
	return &itemRepository{items: map[ID]*Item{}}
}

func (repo *itemRepository) Store(_ context.Context, item *Item) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	repo.items[item.ID] = item
	return nil
}

func (repo *itemRepository) FindByID(_ context.Context, id ID) (*Item, error) {
	repo.mu.RLock()
	defer repo.mu.RUnlock()

	if item, ok := repo.items[id]; ok {
		return item, nil
	}
	return nil, ErrItemNotFound
}

func (repo *itemRepository) FindAll(_ context.Context) ([]*Item, error) {
	return repo.collect(func(*Item) bool { return true }), nil
}

func (repo *itemRepository) FindByUser(_ context.Context, userID string) ([]*Item, error) {
	return repo.collect(func(item *Item) bool { return item.UserID == userID }), nil
}

func (repo *itemRepository) collect(match func(*Item) bool) []*Item {
	repo.mu.RLock()
	defer repo.mu.RUnlock()

	list := make([]*Item, 0, len(repo.items))
	for _, item := range repo.items {
		if match(item) {
			list = append(list, item)
		}
	}

	sort.Slice(list, func(i, j int) bool {
		return list[i].Date.After(list[j].Date)
	})
	return list
}
