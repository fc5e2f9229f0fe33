package core

import (
	"fmt"
	"net/http"
	"slices"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	m "rvcalc/data/models"
	sm "rvcalc/service/models"
)

const (
	DefaultAddr = ":8080"
)

func GetHttpServer(sc ServiceContext, addr string) *http.Server {
	if addr == "" {
		addr = DefaultAddr
	}

	server := &http.Server{
		Addr:           addr,
		Handler:        GetRouter(sc),
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	return server
}

func GetRouter(sc ServiceContext) *gin.Engine {
	engine := gin.Default()

	engine.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000"},
		AllowMethods:     []string{"GET", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	engine.GET("/api/ping", ping)
	engine.GET("/api/settings", func(c *gin.Context) { getSettings(c, sc) })
	engine.GET("/api/variances/:year", func(c *gin.Context) { getVariances(c, sc) })
	engine.GET("/api/variances/:year/summary", func(c *gin.Context) { getVarianceSummary(c, sc) })

	return engine
}

func ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "pong"})
}

func getSettings(c *gin.Context, sc ServiceContext) {
	res := sm.MapSettingsToResponse(sc.Settings.Years, sc.Settings.Intervals)
	c.JSON(http.StatusOK, sm.GetServiceResponseOk(&res))
}

func getVariances(c *gin.Context, sc ServiceContext) {
	rows, ok := queryVariances(c, sc)
	if !ok {
		return
	}

	res := sm.MapVarianceRowsToResponse(rows)
	c.JSON(http.StatusOK, sm.GetServiceResponseOk(&res))
}

func getVarianceSummary(c *gin.Context, sc ServiceContext) {
	rows, ok := queryVariances(c, sc)
	if !ok {
		return
	}

	res := sm.MapBlockSummariesToResponse(SummarizeVarianceTable(rows))
	c.JSON(http.StatusOK, sm.GetServiceResponseOk(&res))
}

// queryVariances writes the error response itself, callers only return when ok is false
func queryVariances(c *gin.Context, sc ServiceContext) ([]*m.VarianceRow, bool) {
	if sc.Store == nil {
		c.JSON(http.StatusServiceUnavailable, sm.GetServiceResponseError[any]("no variance store configured"))
		return nil, false
	}

	filter, err := parseVarianceFilter(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, sm.GetServiceResponseError[any](err.Error()))
		return nil, false
	}

	rows, err := sc.Store.GetVariances(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, sm.GetServiceResponseError[any](err.Error()))
		return nil, false
	}

	if len(rows) == 0 {
		c.JSON(http.StatusNotFound, sm.GetServiceResponseError[any](fmt.Sprintf("no variances found for %d", filter.Year)))
		return nil, false
	}

	return rows, true
}

func parseVarianceFilter(c *gin.Context) (m.VarianceFilter, error) {
	var filter m.VarianceFilter

	year, err := strconv.Atoi(c.Param("year"))
	if err != nil {
		return filter, fmt.Errorf("invalid year %q", c.Param("year"))
	}
	filter.Year = year

	if method := c.Query("method"); method != "" {
		if !slices.Contains(m.Methods, m.Method(method)) {
			return filter, fmt.Errorf("invalid method %q", method)
		}
		filter.Method = m.Method(method)
	}

	if interval := c.Query("interval"); interval != "" {
		n, err := strconv.Atoi(interval)
		if err != nil || n < 1 {
			return filter, fmt.Errorf("invalid interval %q", interval)
		}
		filter.Interval = n
	}

	filter.ContractName = c.Query("contract")
	return filter, nil
}
