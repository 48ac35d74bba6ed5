package adapters

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"intradaybar/internal/feature/intradaybar/domain/entity"
	"intradaybar/internal/feature/intradaybar/usecase"
)

type barGorm struct {
	db *gorm.DB
}

var _ usecase.BarRepository = (*barGorm)(nil)

func NewBarRepository(db *gorm.DB) *barGorm {
	return &barGorm{db: db}
}

// BarModel is one stored bar. interval and time are reserved words in some
// dialects, hence the prefixed column names.
type BarModel struct {
	ID        uint      `gorm:"primaryKey"`
	Security  string    `gorm:"size:64;not null;uniqueIndex:bar_sec_ev_int_time,priority:1"`
	EventType string    `gorm:"size:32;not null;uniqueIndex:bar_sec_ev_int_time,priority:2"`
	Interval  int       `gorm:"column:bar_interval;not null;uniqueIndex:bar_sec_ev_int_time,priority:3"`
	Time      time.Time `gorm:"column:bar_time;not null;uniqueIndex:bar_sec_ev_int_time,priority:4"`

	Open      float64 `gorm:"not null"`
	High      float64 `gorm:"not null"`
	Low       float64 `gorm:"not null"`
	Close     float64 `gorm:"not null"`
	NumEvents int64   `gorm:"not null;default:0"`
	Volume    int64   `gorm:"not null;default:0"`
}

func (BarModel) TableName() string {
	return "bars"
}

func toModel(e entity.StoredBar) BarModel {
	return BarModel{
		Security:  e.Security,
		EventType: e.EventType,
		Interval:  e.Interval,
		Time:      e.Time.UTC(),
		Open:      e.Open,
		High:      e.High,
		Low:       e.Low,
		Close:     e.Close,
		NumEvents: e.NumEvents,
		Volume:    e.Volume,
	}
}

func toEntity(m BarModel) entity.StoredBar {
	return entity.StoredBar{
		Security:  m.Security,
		EventType: m.EventType,
		Interval:  m.Interval,
		Bar: entity.Bar{
			Time:      m.Time.UTC(),
			Open:      m.Open,
			High:      m.High,
			Low:       m.Low,
			Close:     m.Close,
			NumEvents: m.NumEvents,
			Volume:    m.Volume,
		},
	}
}

func (r *barGorm) UpsertBatch(ctx context.Context, bars []entity.StoredBar) error {
	if len(bars) == 0 {
		return nil
	}
	ms := make([]BarModel, 0, len(bars))
	for _, e := range bars {
		ms = append(ms, toModel(e))
	}

	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "security"}, {Name: "event_type"}, {Name: "bar_interval"}, {Name: "bar_time"}},
		DoUpdates: clause.AssignmentColumns([]string{"open", "high", "low", "close", "num_events", "volume"}),
	}).Create(&ms).Error
}

// Find returns the bars of one series in ascending time order. A zero Start or
// End leaves that side of the range open.
func (r *barGorm) Find(ctx context.Context, q entity.BarQuery) ([]entity.StoredBar, error) {
	var rows []BarModel
	tx := r.db.WithContext(ctx).
		Where("security = ? AND event_type = ? AND bar_interval = ?", q.Security, q.EventType, q.Interval)
	if !q.Start.IsZero() {
		tx = tx.Where("bar_time >= ?", q.Start.UTC())
	}
	if !q.End.IsZero() {
		tx = tx.Where("bar_time <= ?", q.End.UTC())
	}
	if err := tx.Order("bar_time ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]entity.StoredBar, 0, len(rows))
	for _, m := range rows {
		out = append(out, toEntity(m))
	}
	return out, nil
}
