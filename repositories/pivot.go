package repositories

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// pivot is a many-to-many join table between a parent key and a related key.
type pivot struct {
	table      string
	foreignKey string
	relatedKey string
	timestamps bool
}

func (p pivot) attach(tx *gorm.DB, id uint, related []uint) error {
	if len(related) == 0 {
		return nil
	}
	now := time.Now()
	rows := make([]map[string]interface{}, 0, len(related))
	for _, relatedID := range related {
		row := map[string]interface{}{p.foreignKey: id, p.relatedKey: relatedID}
		if p.timestamps {
			row["created_at"] = now
			row["updated_at"] = now
		}
		rows = append(rows, row)
	}
	if err := tx.Table(p.table).Create(rows).Error; err != nil {
		return fmt.Errorf("attach %s: %w", p.table, err)
	}
	return nil
}

// detach removes every pivot row of id.
func (p pivot) detach(tx *gorm.DB, id uint) error {
	err := tx.Exec(fmt.Sprintf("DELETE FROM %s WHERE %s = ?", p.table, p.foreignKey), id).Error
	if err != nil {
		return fmt.Errorf("detach %s: %w", p.table, err)
	}
	return nil
}

func (p pivot) sync(tx *gorm.DB, id uint, related []uint) error {
	if err := p.detach(tx, id); err != nil {
		return err
	}
	return p.attach(tx, id, unique(related))
}

// relatedIDs maps each of ids to its related ids in ascending order.
func (p pivot) relatedIDs(tx *gorm.DB, ids []uint) (map[uint][]uint, error) {
	out := make(map[uint][]uint, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	var rows []struct {
		Parent  uint
		Related uint
	}
	err := tx.Table(p.table).
		Select(fmt.Sprintf("%s AS parent, %s AS related", p.foreignKey, p.relatedKey)).
		Where(fmt.Sprintf("%s IN ?", p.foreignKey), ids).
		Order(p.foreignKey).Order(p.relatedKey).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", p.table, err)
	}
	for _, r := range rows {
		out[r.Parent] = append(out[r.Parent], r.Related)
	}
	return out, nil
}

func (p pivot) count(tx *gorm.DB, id uint) (int64, error) {
	var n int64
	err := tx.Table(p.table).Where(fmt.Sprintf("%s = ?", p.foreignKey), id).Count(&n).Error
	return n, err
}

func unique(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func flatten(m map[uint][]uint) []uint {
	var out []uint
	for _, ids := range m {
		out = append(out, ids...)
	}
	return unique(out)
}
