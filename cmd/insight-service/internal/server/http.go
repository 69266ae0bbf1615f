package server

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"supplysight/cmd/insight-service/internal/service"
	pkgerrors "supplysight/pkg/errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// HTTPConfig HTTP 服务配置
type HTTPConfig struct {
	Addr         string
	Mode         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// HTTPServer 分析服务的 HTTP 入口
type HTTPServer struct {
	engine  *gin.Engine
	server  *http.Server
	insight *service.InsightService
	log     *zap.Logger
}

// NewHTTPServer 创建 HTTP 服务器
func NewHTTPServer(cfg HTTPConfig, insight *service.InsightService, logger *zap.Logger) *HTTPServer {
	if cfg.Mode != "" {
		gin.SetMode(cfg.Mode)
	}

	engine := gin.New()
	s := &HTTPServer{
		engine:  engine,
		insight: insight,
		log:     logger,
	}

	s.registerMiddlewares()
	s.registerRoutes()

	s.server = &http.Server{
		Addr:         cfg.Addr,
		Handler:      engine,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	return s
}

// Engine 暴露底层引擎，测试用
func (s *HTTPServer) Engine() *gin.Engine {
	return s.engine
}

// Start 启动监听
func (s *HTTPServer) Start() error {
	s.log.Info("http server starting", zap.String("addr", s.server.Addr))
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Stop 优雅关停
func (s *HTTPServer) Stop(ctx context.Context) error {
	s.log.Info("http server shutting down")
	return s.server.Shutdown(ctx)
}

func (s *HTTPServer) registerMiddlewares() {
	s.engine.Use(gin.Recovery())
	s.engine.Use(s.requestLogger())
	s.engine.Use(corsMiddleware())
	s.engine.Use(metricsMiddleware())
}

func (s *HTTPServer) registerRoutes() {
	s.engine.GET("/health", s.handleHealth)
	s.engine.GET("/weeks", s.handleWeeks)

	v1 := s.engine.Group("/api/v1")
	{
		v1.GET("/metrics", s.handleCompareWeeks)
		v1.GET("/metrics/:week", s.handleWeekMetrics)
		v1.GET("/metrics/:week/tree", s.handleMetricTree)

		v1.GET("/root-cause", s.handleRootCause)
		v1.GET("/root-cause/multi", s.handleMultiWeekRootCause)

		v1.POST("/simulate/:week", s.handleSimulate)
		v1.GET("/simulate/:week/stress", s.handleStressTest)

		v1.GET("/anomalies", s.handleAnomalies)
		v1.GET("/anomalies/by-week", s.handleAnomaliesByWeek)

		v1.GET("/ai/insights", s.handleInsights)
	}
}

// requestLogger 记录请求日志
func (s *HTTPServer) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Info("http request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// respondError 把领域错误翻译为 HTTP 响应
func respondError(c *gin.Context, err error) {
	e := pkgerrors.FromError(err)
	c.JSON(int(e.Code), gin.H{
		"code":    e.Code,
		"reason":  e.Reason,
		"message": e.Message,
	})
}

func (s *HTTPServer) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, s.insight.Health())
}

func (s *HTTPServer) handleWeeks(c *gin.Context) {
	weeks, err := s.insight.Weeks()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"weeks": weeks})
}

func (s *HTTPServer) handleWeekMetrics(c *gin.Context) {
	week, ok := paramInt(c, "week")
	if !ok {
		return
	}
	metrics, err := s.insight.WeekMetrics(week)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, metrics)
}

func (s *HTTPServer) handleMetricTree(c *gin.Context) {
	week, ok := paramInt(c, "week")
	if !ok {
		return
	}
	tree, err := s.insight.MetricTree(week)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tree)
}

func (s *HTTPServer) handleCompareWeeks(c *gin.Context) {
	weeks, ok := queryIntList(c, "weeks")
	if !ok {
		return
	}
	rows, err := s.insight.CompareWeeks(weeks)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"comparison": rows})
}

func (s *HTTPServer) handleRootCause(c *gin.Context) {
	currentWeek, ok := queryInt(c, "current_week")
	if !ok {
		return
	}
	previousWeek, ok := queryInt(c, "previous_week")
	if !ok {
		return
	}
	report, err := s.insight.RootCause(currentWeek, previousWeek)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (s *HTTPServer) handleMultiWeekRootCause(c *gin.Context) {
	weeks, ok := queryIntList(c, "weeks")
	if !ok {
		return
	}
	reports, err := s.insight.MultiWeekRootCause(weeks)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reports": reports})
}

type simulateRequest struct {
	OrderIncreasePct *float64  `json:"order_increase_pct"`
	Increments       []float64 `json:"increments"`
}

func (s *HTTPServer) handleSimulate(c *gin.Context) {
	week, ok := paramInt(c, "week")
	if !ok {
		return
	}

	var req simulateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, pkgerrors.NewBadRequest("INVALID_BODY", "request body must be valid JSON"))
		return
	}

	if len(req.Increments) > 0 {
		report, err := s.insight.SimulateRange(week, req.Increments)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, report)
		return
	}

	if req.OrderIncreasePct == nil {
		respondError(c, pkgerrors.NewBadRequest("MISSING_PARAMETER", "either order_increase_pct or increments is required"))
		return
	}
	scenario, err := s.insight.Simulate(week, *req.OrderIncreasePct)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, scenario)
}

func (s *HTTPServer) handleStressTest(c *gin.Context) {
	week, ok := paramInt(c, "week")
	if !ok {
		return
	}
	step := queryFloatDefault(c, "step", 10)
	maxIncrease := queryFloatDefault(c, "max", 100)

	report, err := s.insight.StressTest(week, step, maxIncrease)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (s *HTTPServer) handleAnomalies(c *gin.Context) {
	contamination := queryFloatDefault(c, "contamination", 0)

	var weekFilter *int
	if raw := c.Query("week"); raw != "" {
		week, err := strconv.Atoi(raw)
		if err != nil {
			badParam(c, "week")
			return
		}
		weekFilter = &week
	}

	report, err := s.insight.Anomalies(weekFilter, contamination)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (s *HTTPServer) handleAnomaliesByWeek(c *gin.Context) {
	contamination := queryFloatDefault(c, "contamination", 0)
	reports, err := s.insight.AnomaliesByWeek(contamination)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"by_week": reports})
}

func (s *HTTPServer) handleInsights(c *gin.Context) {
	currentWeek, ok := queryInt(c, "current_week")
	if !ok {
		return
	}
	previousWeek, ok := queryInt(c, "previous_week")
	if !ok {
		return
	}
	result, err := s.insight.Insights(c.Request.Context(), currentWeek, previousWeek)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func badParam(c *gin.Context, name string) {
	respondError(c, pkgerrors.NewBadRequest("INVALID_PARAMETER", "invalid value for parameter: "+name))
}

func paramInt(c *gin.Context, name string) (int, bool) {
	v, err := strconv.Atoi(c.Param(name))
	if err != nil {
		badParam(c, name)
		return 0, false
	}
	return v, true
}

func queryInt(c *gin.Context, name string) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		badParam(c, name)
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		badParam(c, name)
		return 0, false
	}
	return v, true
}

func queryIntList(c *gin.Context, name string) ([]int, bool) {
	raw := c.Query(name)
	if raw == "" {
		badParam(c, name)
		return nil, false
	}
	parts := strings.Split(raw, ",")
	values := make([]int, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			badParam(c, name)
			return nil, false
		}
		values = append(values, v)
	}
	return values, true
}

func queryFloatDefault(c *gin.Context, name string, fallback float64) float64 {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fallback
	}
	return v
}
