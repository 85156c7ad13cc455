package lineage

import (
	"errors"
	"sort"
	"time"

	"github.com/kopitani-id/kopitrace/internal/models"
	"gorm.io/gorm"
)

// ErrBatchNotFound is returned when no inventory entry carries the batch id.
var ErrBatchNotFound = errors.New("batch tidak ditemukan")

// Parent pointers are plain strings with no acyclicity guarantee at write
// time, so every walk carries a visited set and a hard depth cap.
const defaultMaxDepth = 25

// Engine answers lineage queries over the batch graph encoded by the
// batch_id / parent_batch_id columns of inventory entries.
type Engine struct {
	db       *gorm.DB
	maxDepth int
}

// NewEngine creates an Engine bound to a database handle.
func NewEngine(db *gorm.DB) *Engine {
	return &Engine{db: db, maxDepth: defaultMaxDepth}
}

// BatchNode is one inventory entry annotated with its distance from the
// queried batch.
type BatchNode struct {
	models.InventoryEntry
	Level int `json:"level"`
}

// Tree groups the lineage by direction for client rendering.
type Tree struct {
	Upstream   []BatchNode           `json:"upstream"`
	Current    models.InventoryEntry `json:"current"`
	Downstream []BatchNode           `json:"downstream"`
}

// LineageResult is the full answer to a lineage-tree query.
type LineageResult struct {
	MainBatch     models.InventoryEntry `json:"mainBatch"`
	ParentBatches []BatchNode           `json:"parentBatches"`
	ChildBatches  []BatchNode           `json:"childBatches"`
	Tree          Tree                  `json:"traceabilityTree"`
}

// LineageTree reconstructs the ancestor and descendant chain of a batch.
// Ancestors are ordered furthest-first (root context leads), descendants
// nearest-first; rows at the same level are ordered by creation time.
func (e *Engine) LineageTree(batchID string) (*LineageResult, error) {
	roots, err := e.entriesForBatch(batchID)
	if err != nil {
		return nil, err
	}

	// Most recently created row represents the batch itself.
	main := roots[len(roots)-1]

	ancestors, err := e.walkUp(batchID, roots)
	if err != nil {
		return nil, err
	}
	descendants, err := e.walkDown(batchID)
	if err != nil {
		return nil, err
	}

	// walkUp collects nearest-first; the API contract is furthest-ancestor-first.
	parents := make([]BatchNode, 0, len(ancestors))
	for lvl := maxLevel(ancestors); lvl >= 1; lvl-- {
		for _, n := range ancestors {
			if n.Level == lvl {
				parents = append(parents, n)
			}
		}
	}

	return &LineageResult{
		MainBatch:     main,
		ParentBatches: parents,
		ChildBatches:  descendants,
		Tree: Tree{
			Upstream:   parents,
			Current:    main,
			Downstream: descendants,
		},
	}, nil
}

// entriesForBatch loads every row for a batch id, oldest first, or ErrBatchNotFound.
func (e *Engine) entriesForBatch(batchID string) ([]models.InventoryEntry, error) {
	var rows []models.InventoryEntry
	if err := e.db.Where("batch_id = ?", batchID).
		Order("created_at ASC, id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrBatchNotFound
	}
	return rows, nil
}

// walkUp follows parent_batch_id pointers level by level until no new parent
// appears, the visited set closes a cycle, or the depth cap is reached.
func (e *Engine) walkUp(batchID string, start []models.InventoryEntry) ([]BatchNode, error) {
	visited := map[string]bool{batchID: true}
	frontier := parentIDs(start, visited)

	var out []BatchNode
	for level := 1; len(frontier) > 0 && level <= e.maxDepth; level++ {
		var rows []models.InventoryEntry
		if err := e.db.Where("batch_id IN ?", frontier).
			Order("created_at ASC, id ASC").Find(&rows).Error; err != nil {
			return nil, err
		}
		for _, id := range frontier {
			visited[id] = true
		}
		for _, row := range rows {
			out = append(out, BatchNode{InventoryEntry: row, Level: level})
		}
		frontier = parentIDs(rows, visited)
	}
	return out, nil
}

// walkDown finds entries whose parent_batch_id points at the current frontier,
// with the same cycle guard as walkUp.
func (e *Engine) walkDown(batchID string) ([]BatchNode, error) {
	visited := map[string]bool{batchID: true}
	frontier := []string{batchID}

	var out []BatchNode
	for level := 1; len(frontier) > 0 && level <= e.maxDepth; level++ {
		var rows []models.InventoryEntry
		if err := e.db.Where("parent_batch_id IN ?", frontier).
			Order("created_at ASC, id ASC").Find(&rows).Error; err != nil {
			return nil, err
		}
		next := make([]string, 0, len(rows))
		seen := map[string]bool{}
		for _, row := range rows {
			if row.BatchID == "" || visited[row.BatchID] {
				continue
			}
			out = append(out, BatchNode{InventoryEntry: row, Level: level})
			if !seen[row.BatchID] {
				seen[row.BatchID] = true
				next = append(next, row.BatchID)
			}
		}
		for _, id := range next {
			visited[id] = true
		}
		frontier = next
	}
	return out, nil
}

// parentIDs collects the distinct unvisited parent pointers of a row set.
func parentIDs(rows []models.InventoryEntry, visited map[string]bool) []string {
	var ids []string
	seen := map[string]bool{}
	for _, row := range rows {
		p := row.ParentBatchID
		if p == "" || visited[p] || seen[p] {
			continue
		}
		seen[p] = true
		ids = append(ids, p)
	}
	return ids
}

func maxLevel(nodes []BatchNode) int {
	max := 0
	for _, n := range nodes {
		if n.Level > max {
			max = n.Level
		}
	}
	return max
}

// Timeline event types.
const (
	EventInventory   = "INVENTORY"
	EventTransaction = "TRANSACTION"
)

// TimelineEvent is one inventory or transaction event touching a batch.
type TimelineEvent struct {
	EventType   string                       `json:"event_type"`
	Tanggal     time.Time                    `json:"tanggal"`
	CreatedAt   *time.Time                   `json:"createdAt,omitempty"`
	Inventory   *models.InventoryEntry       `json:"inventory,omitempty"`
	Transaction *models.InventoryTransaction `json:"transaction,omitempty"`
}

// TimelineResult is the unified event history of a batch.
type TimelineResult struct {
	BatchID     string          `json:"batchId"`
	Timeline    []TimelineEvent `json:"timeline"`
	TotalEvents int             `json:"totalEvents"`
}

// Timeline merges every inventory row of the batch with every transaction
// linked through those rows, newest first (event date, then creation time,
// nulls last). A batch with no transactions yields the inventory events only.
func (e *Engine) Timeline(batchID string) (*TimelineResult, error) {
	entries, err := e.entriesForBatch(batchID)
	if err != nil {
		return nil, err
	}

	entryIDs := make([]uint, 0, len(entries))
	for _, en := range entries {
		entryIDs = append(entryIDs, en.ID)
	}

	var txs []models.InventoryTransaction
	if err := e.db.Where("inventory_entry_id IN ?", entryIDs).
		Preload("Lahan").Find(&txs).Error; err != nil {
		return nil, err
	}

	events := make([]TimelineEvent, 0, len(entries)+len(txs))
	for i := range entries {
		en := entries[i]
		created := en.CreatedAt
		events = append(events, TimelineEvent{
			EventType: EventInventory,
			Tanggal:   en.Tanggal,
			CreatedAt: &created,
			Inventory: &entries[i],
		})
	}
	for i := range txs {
		tr := txs[i]
		created := tr.CreatedAt
		events = append(events, TimelineEvent{
			EventType:   EventTransaction,
			Tanggal:     tr.Tanggal,
			CreatedAt:   &created,
			Transaction: &txs[i],
		})
	}

	sort.SliceStable(events, func(i, j int) bool {
		if !events[i].Tanggal.Equal(events[j].Tanggal) {
			return events[i].Tanggal.After(events[j].Tanggal)
		}
		// Secondary: creation time descending, nulls last.
		ci, cj := events[i].CreatedAt, events[j].CreatedAt
		switch {
		case ci == nil:
			return false
		case cj == nil:
			return true
		default:
			return ci.After(*cj)
		}
	})

	return &TimelineResult{
		BatchID:     batchID,
		Timeline:    events,
		TotalEvents: len(events),
	}, nil
}
