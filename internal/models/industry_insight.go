package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type DemandLevel string

const (
	DemandHigh   DemandLevel = "High"
	DemandMedium DemandLevel = "Medium"
	DemandLow    DemandLevel = "Low"
)

func (d DemandLevel) Valid() bool {
	switch d {
	case DemandHigh, DemandMedium, DemandLow:
		return true
	}
	return false
}

type MarketOutlook string

const (
	OutlookPositive MarketOutlook = "Positive"
	OutlookNeutral  MarketOutlook = "Neutral"
	OutlookNegative MarketOutlook = "Negative"
)

func (o MarketOutlook) Valid() bool {
	switch o {
	case OutlookPositive, OutlookNeutral, OutlookNegative:
		return true
	}
	return false
}

type SalaryRange struct {
	Role     string  `json:"role"`
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	Median   float64 `json:"median"`
	Location string  `json:"location"`
}

// InsightReport is the generated part of an industry insight, the shape the
// model is asked to return.
type InsightReport struct {
	SalaryRanges      []SalaryRange `json:"salaryRanges"`
	GrowthRate        float64       `json:"growthRate"`
	DemandLevel       DemandLevel   `json:"demandLevel"`
	TopSkills         []string      `json:"topSkills"`
	MarketOutlook     MarketOutlook `json:"marketOutlook"`
	KeyTrends         []string      `json:"keyTrends"`
	RecommendedSkills []string      `json:"recommendedSkills"`
}

// IndustryInsight is keyed by industry and only ever replaced as a whole.
type IndustryInsight struct {
	ID                uuid.UUID                        `gorm:"type:uuid;primaryKey" json:"id"`
	Industry          string                           `gorm:"type:text;uniqueIndex;not null" json:"industry"`
	SalaryRanges      datatypes.JSONSlice[SalaryRange] `gorm:"not null" json:"salaryRanges"`
	GrowthRate        float64                          `gorm:"not null" json:"growthRate"`
	DemandLevel       DemandLevel                      `gorm:"type:text;not null" json:"demandLevel"`
	TopSkills         datatypes.JSONSlice[string]      `gorm:"not null" json:"topSkills"`
	MarketOutlook     MarketOutlook                    `gorm:"type:text;not null" json:"marketOutlook"`
	KeyTrends         datatypes.JSONSlice[string]      `gorm:"not null" json:"keyTrends"`
	RecommendedSkills datatypes.JSONSlice[string]      `gorm:"not null" json:"recommendedSkills"`
	LastUpdated       time.Time                        `json:"lastUpdated"`
	NextUpdate        time.Time                        `gorm:"index" json:"nextUpdate"`
}

func (IndustryInsight) TableName() string {
	return "industry_insights"
}

func (i *IndustryInsight) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// NewIndustryInsight builds a complete record from a report.
func NewIndustryInsight(industry string, report InsightReport, now time.Time, ttl time.Duration) *IndustryInsight {
	return &IndustryInsight{
		Industry:          industry,
		SalaryRanges:      datatypes.NewJSONSlice(report.SalaryRanges),
		GrowthRate:        report.GrowthRate,
		DemandLevel:       report.DemandLevel,
		TopSkills:         datatypes.NewJSONSlice(report.TopSkills),
		MarketOutlook:     report.MarketOutlook,
		KeyTrends:         datatypes.NewJSONSlice(report.KeyTrends),
		RecommendedSkills: datatypes.NewJSONSlice(report.RecommendedSkills),
		LastUpdated:       now,
		NextUpdate:        now.Add(ttl),
	}
}
