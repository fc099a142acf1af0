package services

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/diewo77/catering-app/internal/models"
)

// NextSequence bumps and returns the per-year counter for kind ("quotation",
// "invoice"). Must run inside the transaction of the insert that consumes
// the number: the row-level lock taken by the UPDATE serializes concurrent
// writers, and a rollback releases the number with the document.
func NextSequence(tx *gorm.DB, kind string, year int) (int64, error) {
	// First use of a (kind, year) races on the insert. DO NOTHING keeps the
	// loser's transaction alive so it can take the UPDATE path below.
	ctr := models.SequenceCounter{Kind: kind, Year: year, Seq: 0}
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&ctr).Error; err != nil {
		return 0, err
	}
	res := tx.Model(&models.SequenceCounter{}).
		Where("kind = ? AND year = ?", kind, year).
		Update("seq", gorm.Expr("seq + 1"))
	if res.Error != nil {
		return 0, res.Error
	}
	var cur models.SequenceCounter
	if err := tx.Where("kind = ? AND year = ?", kind, year).First(&cur).Error; err != nil {
		return 0, err
	}
	return cur.Seq, nil
}
