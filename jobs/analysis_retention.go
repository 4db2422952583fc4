package jobs

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// AnalysisPurger deletes persisted analyses older than a cutoff
type AnalysisPurger interface {
	PurgeAnalysesBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// AnalysisRetentionJob keeps the analyses table bounded by age
type AnalysisRetentionJob struct {
	Store     AnalysisPurger
	Retention time.Duration
	now       func() time.Time
}

func NewAnalysisRetentionJob(store AnalysisPurger, retention time.Duration) *AnalysisRetentionJob {
	return &AnalysisRetentionJob{Store: store, Retention: retention, now: time.Now}
}

func (j *AnalysisRetentionJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	cutoff := j.now().Add(-j.Retention)
	removed, err := j.Store.PurgeAnalysesBefore(ctx, cutoff)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"job":   "analysis_retention",
			"error": err.Error(),
		}).Error("Analysis Retention Job failed")
		return
	}

	logrus.WithFields(logrus.Fields{
		"job":     "analysis_retention",
		"cutoff":  cutoff,
		"removed": removed,
	}).Info("Analysis Retention Job completed")
}
