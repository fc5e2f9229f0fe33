package models

import (
	"time"

	dm "rvcalc/data/models"
)

type VarianceRowResponse struct {
	Date         string  `json:"date"`
	ContractName string  `json:"contractName"`
	Interval     int     `json:"interval"`
	Method       string  `json:"method"`
	RV           float64 `json:"rv"`
	BV           float64 `json:"bv"`
	SSJ          float64 `json:"ssj"`
	RollDate     bool    `json:"rollDate"`
}

type BlockSummaryResponse struct {
	Method    string  `json:"method"`
	Interval  int     `json:"interval"`
	Rows      int     `json:"rows"`
	MeanRV    float64 `json:"meanRv"`
	MeanBV    float64 `json:"meanBv"`
	MeanSSJ   float64 `json:"meanSsj"`
	JumpShare float64 `json:"jumpShare"`
}

type SettingsResponse struct {
	Years     []int    `json:"years"`
	Intervals []int    `json:"intervals"`
	Methods   []string `json:"methods"`
}

func MapVarianceRowsToResponse(rows []*dm.VarianceRow) []VarianceRowResponse {
	res := make([]VarianceRowResponse, len(rows))
	for i, row := range rows {
		res[i] = VarianceRowResponse{
			Date:         row.Date.Format(time.DateOnly),
			ContractName: row.ContractName,
			Interval:     row.Interval,
			Method:       string(row.Method),
			RV:           row.RV,
			BV:           row.BV,
			SSJ:          row.SSJ,
			RollDate:     row.RollDate,
		}
	}
	return res
}

func MapBlockSummariesToResponse(summaries []dm.BlockSummary) []BlockSummaryResponse {
	res := make([]BlockSummaryResponse, len(summaries))
	for i, s := range summaries {
		res[i] = BlockSummaryResponse{
			Method:    string(s.Method),
			Interval:  s.Interval,
			Rows:      s.Rows,
			MeanRV:    s.MeanRV,
			MeanBV:    s.MeanBV,
			MeanSSJ:   s.MeanSSJ,
			JumpShare: s.JumpShare,
		}
	}
	return res
}

func MapSettingsToResponse(years, intervals []int) SettingsResponse {
	methods := make([]string, len(dm.Methods))
	for i, method := range dm.Methods {
		methods[i] = string(method)
	}

	return SettingsResponse{
		Years:     years,
		Intervals: intervals,
		Methods:   methods,
	}
}
