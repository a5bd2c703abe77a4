package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"homeprice/monitoring"
	"homeprice/predict"
)

// maxMultipartMemory multipart表单解析的内存上限
const maxMultipartMemory = 1 << 20

var predictFields = []string{"total_sqft", "location", "bhk", "bath"}

// Handlers 估价API处理器
type Handlers struct {
	estimator *predict.Estimator
	log       *zap.Logger
}

// NewHandlers 创建处理器
func NewHandlers(estimator *predict.Estimator, logger *zap.Logger) *Handlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handlers{estimator: estimator, log: logger.Named("http")}
}

// RegisterHandlers 注册所有路由
func RegisterHandlers(mux *http.ServeMux, h *Handlers) {
	mux.HandleFunc("GET /api/health", h.handleHealth)
	mux.HandleFunc("GET /api/ready", h.handleReady)
	mux.HandleFunc("GET /get_location_names", h.handleLocationNames)
	mux.HandleFunc("GET /predict_home_price", h.handlePredictHomePrice)
	mux.HandleFunc("POST /predict_home_price", h.handlePredictHomePrice)
	mux.Handle("GET /metrics", monitoring.Handler())
}

func (h *Handlers) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "ok",
		"artifacts": h.estimator.Status(),
		"ready":     h.estimator.Ready(),
	})
}

func (h *Handlers) handleReady(w http.ResponseWriter, r *http.Request) {
	if !h.estimator.Ready() {
		writeError(w, http.StatusServiceUnavailable, "artifacts not loaded")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (h *Handlers) handleLocationNames(w http.ResponseWriter, r *http.Request) {
	locations := h.estimator.Locations()
	if len(locations) == 0 {
		h.log.Warn("no locations available")
		writeError(w, http.StatusInternalServerError, "No locations available")
		return
	}
	h.log.Debug("returned locations", zap.Int("count", len(locations)))
	writeJSON(w, http.StatusOK, map[string][]string{"locations": locations})
}

func (h *Handlers) handlePredictHomePrice(w http.ResponseWriter, r *http.Request) {
	req, err := parsePredictForm(r)
	if err != nil {
		h.log.Info("rejected estimate request", zap.String("request_id", GetRequestID(r.Context())), zap.Error(err))
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.estimator.Estimate(r.Context(), req)
	var verr *predict.ValidationError
	switch {
	case errors.As(err, &verr):
		writeError(w, http.StatusBadRequest, verr.Message)
		return
	case errors.Is(err, predict.ErrArtifactsNotLoaded):
		h.log.Error("estimate requested without artifacts", zap.String("request_id", GetRequestID(r.Context())))
		writeError(w, http.StatusInternalServerError, "Unable to predict price. Model not loaded properly.")
		return
	case err != nil:
		h.log.Error("estimate failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.log.Info("predicted price",
		zap.String("request_id", GetRequestID(r.Context())),
		zap.Float64("estimated_price", result.Price),
		zap.String("path", result.Path),
		zap.String("location", req.Location),
		zap.Float64("total_sqft", req.Sqft),
		zap.Int("bhk", req.BHK),
		zap.Int("bath", req.Bath),
	)
	writeJSON(w, http.StatusOK, map[string]float64{"estimated_price": result.Price})
}

// parsePredictForm 只读取请求体表单字段，不读取查询参数，
// 因此不带请求体的GET会报告缺少total_sqft
func parsePredictForm(r *http.Request) (predict.Request, error) {
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return predict.Request{}, &predict.ValidationError{Message: predict.MsgInvalidInput}
	}
	for _, field := range predictFields {
		if _, ok := r.PostForm[field]; !ok {
			return predict.Request{}, &predict.ValidationError{Message: "Missing " + field + " parameter"}
		}
	}

	sqft, err := strconv.ParseFloat(strings.TrimSpace(r.PostForm.Get("total_sqft")), 64)
	if err != nil {
		return predict.Request{}, &predict.ValidationError{Message: predict.MsgInvalidInput}
	}
	bhk, err := strconv.Atoi(strings.TrimSpace(r.PostForm.Get("bhk")))
	if err != nil {
		return predict.Request{}, &predict.ValidationError{Message: predict.MsgInvalidInput}
	}
	bath, err := strconv.Atoi(strings.TrimSpace(r.PostForm.Get("bath")))
	if err != nil {
		return predict.Request{}, &predict.ValidationError{Message: predict.MsgInvalidInput}
	}

	return predict.Request{
		Location: r.PostForm.Get("location"),
		Sqft:     sqft,
		BHK:      bhk,
		Bath:     bath,
	}, nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
