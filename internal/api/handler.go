// Package api serves statement parsing over HTTP.
package api

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"github.com/insightdelivered/cc-statement-parser/internal/category"
	"github.com/insightdelivered/cc-statement-parser/internal/collate"
	"github.com/insightdelivered/cc-statement-parser/internal/extractor"
	"github.com/insightdelivered/cc-statement-parser/internal/models"
	"github.com/insightdelivered/cc-statement-parser/internal/parser"
	"github.com/insightdelivered/cc-statement-parser/internal/pipeline"
	"github.com/insightdelivered/cc-statement-parser/internal/writer"
)

const version = "1.0.0"

// ParseResponse is the JSON response from the /api/parse endpoint.
type ParseResponse struct {
	Success   bool                       `json:"success"`
	Error     string                     `json:"error,omitempty"`
	RequestID string                     `json:"requestId,omitempty"`
	Records   []models.CategorizedRecord `json:"records"`
	Documents []DocumentInfo             `json:"documents,omitempty"`
	Failures  []FailureInfo              `json:"failures,omitempty"`
	Summary   *models.Summary            `json:"summary,omitempty"`
	CSV       string                     `json:"csv,omitempty"`
	Cached    bool                       `json:"cached,omitempty"`
}

// DocumentInfo describes one parsed statement.
type DocumentInfo struct {
	ID             string               `json:"id"`
	Records        int                  `json:"records"`
	PeriodStart    string               `json:"periodStart,omitempty"`
	PeriodEnd      string               `json:"periodEnd,omitempty"`
	Rewards        models.RewardSummary `json:"rewards"`
	PointsReversed int64                `json:"pointsReversed,omitempty"`
	Skipped        []models.SkippedRow  `json:"skipped,omitempty"`
}

// FailureInfo describes a statement that could not be parsed.
type FailureInfo struct {
	ID    string `json:"id"`
	Error string `json:"error"`
}

// Options configure a Handler.
type Options struct {
	Password    string
	Workers     int
	Cardholders []string
	CacheTTL    time.Duration
}

// SourceFunc builds the page source for one request's uploads.
type SourceFunc func(files map[string][]byte, password string) pipeline.Source

// Handler holds the HTTP handlers for the API.
type Handler struct {
	opts      Options
	logger    *zap.Logger
	cache     *cache.Cache
	newSource SourceFunc
}

// NewHandler builds a Handler that reads uploads with the PDF extractor.
func NewHandler(opts Options, logger *zap.Logger) *Handler {
	ex := extractor.New(logger)
	return newHandler(opts, logger, func(files map[string][]byte, password string) pipeline.Source {
		return pipeline.UploadSource{Extractor: ex, Password: password, Files: files}
	})
}

func newHandler(opts Options, logger *zap.Logger, newSource SourceFunc) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	ttl := opts.CacheTTL
	if ttl <= 0 {
		ttl = cache.NoExpiration
	}
	return &Handler{
		opts:      opts,
		logger:    logger,
		cache:     cache.New(ttl, 2*ttl),
		newSource: newSource,
	}
}

// HandleHealth reports that the service is up.
func (h *Handler) HandleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "ok",
		"version": version,
	})
}

// HandleParse parses uploaded statements. Form fields: file (one or more
// PDFs), password, sortformat, name, categories (JSON object), header.
func (h *Handler) HandleParse(c *fiber.Ctx) error {
	requestID, _ := c.Locals(requestIDKey).(string)
	log := h.logger.With(zap.String("requestId", requestID))

	form, err := c.MultipartForm()
	if err != nil {
		return writeError(c, fiber.StatusBadRequest, fmt.Sprintf("Failed to parse form: %v", err))
	}
	uploads := form.File["file"]
	if len(uploads) == 0 {
		return writeError(c, fiber.StatusBadRequest, "No file uploaded. Use form field 'file'.")
	}

	var key *collate.SortKey
	if sortFormat := c.FormValue("sortformat"); sortFormat != "" {
		if key, err = collate.NewSortKey(sortFormat); err != nil {
			return writeError(c, fiber.StatusBadRequest, err.Error())
		}
	}

	var categories *category.Config
	if raw := c.FormValue("categories"); raw != "" {
		if categories, err = category.Parse([]byte(raw)); err != nil {
			cfgErr := &category.ConfigError{Path: "categories", Err: err}
			return writeError(c, fiber.StatusBadRequest, cfgErr.Error())
		}
	}

	password := c.FormValue("password")
	if password == "" {
		password = h.opts.Password
	}
	// Form values alias the request buffer; the name can end up on cached records.
	cardholder := strings.Clone(c.FormValue("name"))
	includeHeader := c.FormValue("header") != "false"

	files := make(map[string][]byte, len(uploads))
	ids := make([]string, 0, len(uploads))
	digest := sha256.New()
	for _, fh := range uploads {
		if !strings.EqualFold(filepath.Ext(fh.Filename), ".pdf") {
			return writeError(c, fiber.StatusBadRequest, fmt.Sprintf("Only PDF files are supported: %q.", fh.Filename))
		}
		data, err := readUpload(fh)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, fmt.Sprintf("Failed to read %q: %v", fh.Filename, err))
		}

		id := uniqueID(files, filepath.Base(fh.Filename))
		files[id] = data
		ids = append(ids, id)
		fmt.Fprintf(digest, "%s\x00%d\x00", id, len(data))
		digest.Write(data)
	}
	for _, v := range []string{password, cardholder, c.FormValue("sortformat"), c.FormValue("categories"), strconv.FormatBool(includeHeader)} {
		fmt.Fprintf(digest, "%s\x00", v)
	}
	cacheKey := hex.EncodeToString(digest.Sum(nil))

	if cached, ok := h.cache.Get(cacheKey); ok {
		resp := cached.(ParseResponse)
		resp.RequestID = requestID
		resp.Cached = true
		log.Debug("served parse from cache", zap.Int("files", len(ids)))
		return c.JSON(resp)
	}

	p := parser.New(parser.Options{Cardholder: cardholder, Cardholders: h.opts.Cardholders}, log)
	runner := pipeline.NewRunner(h.newSource(files, password), p, h.opts.Workers, log)

	res, err := runner.Run(c.UserContext(), ids, key)
	if err != nil && !errors.Is(err, pipeline.ErrNoDocuments) {
		return writeError(c, fiber.StatusInternalServerError, err.Error())
	}

	resp := ParseResponse{
		Success:   err == nil,
		RequestID: requestID,
		Records:   []models.CategorizedRecord{},
		Failures:  failureInfos(res.Failures),
	}
	if err != nil {
		resp.Error = err.Error()
		return c.Status(fiber.StatusUnprocessableEntity).JSON(resp)
	}

	resp.Documents = documentInfos(res.Documents)

	records, sum := res.Summarize(categories)
	if len(records) == 0 {
		resp.Success = false
		resp.Error = writer.ErrNoRecords.Error()
		return c.Status(fiber.StatusUnprocessableEntity).JSON(resp)
	}
	resp.Records = records
	resp.Summary = &sum

	var csvBuf strings.Builder
	csvWriter := &writer.CSVWriter{IncludeHeader: includeHeader}
	if err := csvWriter.Write(&csvBuf, res.Records()); err != nil {
		return writeError(c, fiber.StatusInternalServerError, fmt.Sprintf("CSV generation failed: %v", err))
	}
	resp.CSV = csvBuf.String()

	h.cache.Set(cacheKey, resp, cache.DefaultExpiration)
	log.Info("parsed upload",
		zap.Int("files", len(ids)),
		zap.Int("records", len(resp.Records)),
		zap.Int("failed", len(resp.Failures)),
	)
	return c.JSON(resp)
}

func readUpload(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

// uniqueID keeps repeated upload names apart: a second "jan.pdf" becomes
// "jan (2).pdf".
func uniqueID(taken map[string][]byte, name string) string {
	if _, ok := taken[name]; !ok {
		return name
	}
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)
	for n := 2; ; n++ {
		id := fmt.Sprintf("%s (%d)%s", base, n, ext)
		if _, ok := taken[id]; !ok {
			return id
		}
	}
}

func documentInfos(docs []models.Document) []DocumentInfo {
	out := make([]DocumentInfo, 0, len(docs))
	for _, d := range docs {
		info := DocumentInfo{
			ID:             d.ID,
			Records:        len(d.Records),
			Rewards:        d.Rewards,
			PointsReversed: d.PointsReversed,
			Skipped:        d.Skipped,
		}
		if !d.PeriodStart.IsZero() {
			info.PeriodStart = d.PeriodStart.Format(time.DateOnly)
			info.PeriodEnd = d.PeriodEnd.Format(time.DateOnly)
		}
		out = append(out, info)
	}
	return out
}

func failureInfos(failures []pipeline.Failure) []FailureInfo {
	out := make([]FailureInfo, 0, len(failures))
	for _, f := range failures {
		out = append(out, FailureInfo{ID: f.ID, Error: f.Err.Error()})
	}
	return out
}

func writeError(c *fiber.Ctx, status int, msg string) error {
	requestID, _ := c.Locals(requestIDKey).(string)
	return c.Status(status).JSON(ParseResponse{
		Success:   false,
		Error:     msg,
		RequestID: requestID,
		Records:   []models.CategorizedRecord{},
	})
}
