package doctor

import (
	"context"
	"fmt"
	"os"

	"github.com/hay-kot/parley/internal/core/chat"
	"github.com/hay-kot/parley/internal/core/config"
	"github.com/hay-kot/parley/internal/core/record"
)

// StoreCheck verifies the configured record store can be read.
type StoreCheck struct {
	cfg *config.Config
	db  record.Database
}

// NewStoreCheck creates a new store check.
func NewStoreCheck(cfg *config.Config, db record.Database) *StoreCheck {
	return &StoreCheck{cfg: cfg, db: db}
}

func (c *StoreCheck) Name() string {
	return "Record Store"
}

func (c *StoreCheck) Run(ctx context.Context) Result {
	result := Result{Name: c.Name()}

	if c.cfg == nil || c.db == nil {
		result.Items = append(result.Items, CheckItem{
			Label:  "Store opened",
			Status: StatusFail,
			Detail: "store not opened",
		})
		return result
	}

	path := c.cfg.RecordsPath()
	label := fmt.Sprintf("%s driver", c.cfg.Store.Driver)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		result.Items = append(result.Items, CheckItem{
			Label:  label,
			Status: StatusPass,
			Detail: "no records yet (" + path + ")",
		})
		return result
	}

	if _, err := c.db.Query(ctx, record.Query{Type: chat.BoardRecordType, Limit: 1}); err != nil {
		result.Items = append(result.Items, CheckItem{
			Label:  label,
			Status: StatusFail,
			Detail: err.Error(),
		})
		return result
	}

	result.Items = append(result.Items, CheckItem{
		Label:  label,
		Status: StatusPass,
		Detail: path,
	})
	return result
}
