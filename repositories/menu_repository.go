package repositories

import (
	"context"
	"sync"

	"snack-shop/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

type MenuRepository struct {
	db *pgxpool.Pool
}

func NewMenuRepository(db *pgxpool.Pool) *MenuRepository {
	return &MenuRepository{db: db}
}

func (r *MenuRepository) GetAll(ctx context.Context) ([]models.MenuItem, error) {
	query := `SELECT id, name, price, category, description, available FROM menu_items ORDER BY sort_order, id`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []models.MenuItem{}
	for rows.Next() {
		var m models.MenuItem
		if err := rows.Scan(&m.ID, &m.Name, &m.Price, &m.Category, &m.Description, &m.Available); err != nil {
			return nil, err
		}
		items = append(items, m)
	}
	return items, rows.Err()
}

func (r *MenuRepository) GetByIDs(ctx context.Context, ids []string) (map[string]models.MenuItem, error) {
	query := `SELECT id, name, price, category, description, available FROM menu_items WHERE id = ANY($1)`

	rows, err := r.db.Query(ctx, query, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := map[string]models.MenuItem{}
	for rows.Next() {
		var m models.MenuItem
		if err := rows.Scan(&m.ID, &m.Name, &m.Price, &m.Category, &m.Description, &m.Available); err != nil {
			return nil, err
		}
		items[m.ID] = m
	}
	return items, rows.Err()
}

type MemoryMenuRepository struct {
	mu    sync.RWMutex
	items map[string]models.MenuItem
	order []string
}

func NewMemoryMenuRepository(items ...models.MenuItem) *MemoryMenuRepository {
	r := &MemoryMenuRepository{items: map[string]models.MenuItem{}}
	for _, item := range items {
		r.Set(item)
	}
	return r
}

func (r *MemoryMenuRepository) Set(item models.MenuItem) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[item.ID]; !ok {
		r.order = append(r.order, item.ID)
	}
	r.items[item.ID] = item
}

func (r *MemoryMenuRepository) GetAll(ctx context.Context) ([]models.MenuItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.MenuItem, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.items[id])
	}
	return out, nil
}

func (r *MemoryMenuRepository) GetByIDs(ctx context.Context, ids []string) (map[string]models.MenuItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := map[string]models.MenuItem{}
	for _, id := range ids {
		if item, ok := r.items[id]; ok {
			out[id] = item
		}
	}
	return out, nil
}

// DefaultMenu mirrors the seed rows in database/migration.
func DefaultMenu() []models.MenuItem {
	return []models.MenuItem{
		{ID: "1", Name: "招牌滷肉飯", Price: 45, Category: "主食", Description: "手切五花肉慢火燉煮，肥而不膩。", Available: true},
		{ID: "2", Name: "古早味乾麵", Price: 50, Category: "主食", Description: "特製油蔥酥與Ｑ彈手工麵條。", Available: true},
		{ID: "3", Name: "雞肉飯", Price: 55, Category: "主食", Description: "鮮嫩雞絲搭配香噴噴雞油。", Available: true},
		{ID: "4", Name: "燙青菜", Price: 40, Category: "小菜", Description: "每日嚴選新鮮季節蔬菜。", Available: true},
		{ID: "5", Name: "滷蛋", Price: 15, Category: "小菜", Description: "滷至入味的茶香蛋。", Available: true},
		{ID: "6", Name: "豆干海帶拼盤", Price: 40, Category: "小菜", Description: "滷味拼盤，份量足。", Available: true},
		{ID: "7", Name: "貢丸湯", Price: 35, Category: "湯品", Description: "Ｑ彈貢丸搭配清甜大骨湯。", Available: true},
		{ID: "8", Name: "虱目魚肚湯", Price: 120, Category: "湯品", Description: "無刺魚肚，鮮美甘甜。", Available: true},
		{ID: "9", Name: "古早味紅茶", Price: 25, Category: "飲料", Description: "香甜不澀的經典風味。", Available: true},
		{ID: "10", Name: "無糖綠茶", Price: 25, Category: "飲料", Description: "清爽解膩，回甘好喝。", Available: true},
	}
}
