package storage

import (
	"context"
	"errors"
	"time"

	"github.com/LJTian/FactHub/internal/credibility"
	"github.com/LJTian/FactHub/internal/factcheck"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// FactCheck 用户提交的一次核查记录
type FactCheck struct {
	ID              string                                  `gorm:"primaryKey;type:varchar(36)" json:"id"`
	UserID          string                                  `gorm:"size:36;index:idx_factcheck_user_created,priority:1;not null" json:"userId"`
	Claim           string                                  `gorm:"type:text" json:"claim"`
	ClaimHash       string                                  `gorm:"size:32;index" json:"claimHash"`
	Verdict         string                                  `gorm:"size:16;index" json:"verdict"`
	Confidence      int                                     `json:"confidence"`
	Summary         string                                  `gorm:"type:text" json:"summary"`
	Context         string                                  `gorm:"type:text" json:"context"`
	EvidenceFor     datatypes.JSONSlice[string]             `gorm:"type:jsonb" json:"evidenceFor"`
	EvidenceAgainst datatypes.JSONSlice[string]             `gorm:"type:jsonb" json:"evidenceAgainst"`
	Queries         datatypes.JSONSlice[string]             `gorm:"type:jsonb" json:"queries"`
	Sources         datatypes.JSONSlice[credibility.Source] `gorm:"type:jsonb" json:"sources"`
	Cached          bool                                    `json:"cached"`
	CreatedAt       time.Time                               `gorm:"index:idx_factcheck_user_created,priority:2" json:"createdAt"`
}

func toFactCheck(userID string, r *factcheck.Result) *FactCheck {
	return &FactCheck{
		ID:              r.ID,
		UserID:          userID,
		Claim:           toValidUTF8(r.Claim),
		ClaimHash:       factcheck.ClaimHash(r.Claim),
		Verdict:         string(r.Verdict),
		Confidence:      r.Confidence,
		Summary:         toValidUTF8(r.Summary),
		Context:         toValidUTF8(r.Context),
		EvidenceFor:     datatypes.JSONSlice[string](r.EvidenceFor),
		EvidenceAgainst: datatypes.JSONSlice[string](r.EvidenceAgainst),
		Queries:         datatypes.JSONSlice[string](r.Queries),
		Sources:         datatypes.JSONSlice[credibility.Source](r.Sources),
		Cached:          r.Cached,
		CreatedAt:       r.CreatedAt,
	}
}

func (fc *FactCheck) toResult() factcheck.Result {
	return factcheck.Result{
		ID:              fc.ID,
		Claim:           fc.Claim,
		Verdict:         factcheck.ParseVerdict(fc.Verdict),
		Confidence:      fc.Confidence,
		Summary:         fc.Summary,
		EvidenceFor:     []string(fc.EvidenceFor),
		EvidenceAgainst: []string(fc.EvidenceAgainst),
		Context:         fc.Context,
		Queries:         []string(fc.Queries),
		Sources:         []credibility.Source(fc.Sources),
		Cached:          fc.Cached,
		CreatedAt:       fc.CreatedAt,
	}
}

func (s *Store) SaveResult(ctx context.Context, userID string, r *factcheck.Result) error {
	return s.DB.WithContext(ctx).Create(toFactCheck(userID, r)).Error
}

// ListResults 返回用户最近的核查记录，按时间倒序
func (s *Store) ListResults(ctx context.Context, userID string, limit int) ([]factcheck.Result, error) {
	var rows []FactCheck
	if err := s.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]factcheck.Result, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].toResult())
	}
	return out, nil
}

func (s *Store) GetResult(ctx context.Context, userID, id string) (*factcheck.Result, error) {
	var row FactCheck
	err := s.DB.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	r := row.toResult()
	return &r, nil
}

// DeleteResult 只能删除自己的记录，不存在时返回 ErrNotFound
func (s *Store) DeleteResult(ctx context.Context, userID, id string) error {
	res := s.DB.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&FactCheck{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
