package app

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"pneumascan/internal/geo"
	"pneumascan/internal/vision"
)

var (
	ErrNoFilename        = errors.New("no selected file")
	ErrUnsupportedFormat = errors.New("please upload a png, jpg or jpeg image")
	ErrNotGrayscale      = errors.New("this does not appear to be a grayscale x-ray image")
	ErrInvalidImage      = errors.New("invalid image file or error processing image")
	ErrBadCoordinates    = errors.New("coordinates out of range")
)

var allowedExtensions = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
}

// facilityGroups maps response group keys to the OSM amenity queried for them.
var facilityGroups = []struct {
	Key     string
	Amenity string
}{
	{Key: "multi_specialty", Amenity: "hospital"},
	{Key: "specialized", Amenity: "clinic"},
	{Key: "nursing_home", Amenity: "nursing_home"},
}

// ImageClassifier is the inference capability the screening flow depends on.
type ImageClassifier interface {
	Classify(imageData []byte) (vision.Result, error)
}

// FacilityFinder locates amenities near a coordinate.
type FacilityFinder interface {
	FindNearby(ctx context.Context, lat, lon float64, amenity string) ([]geo.Facility, error)
}

// FacilityCache is an optional read-through cache in front of the finder.
type FacilityCache interface {
	Get(ctx context.Context, lat, lon float64, amenity string) ([]geo.Facility, bool, error)
	Set(ctx context.Context, lat, lon float64, amenity string, facilities []geo.Facility) error
}

type ScreeningService struct {
	classifier ImageClassifier
	finder     FacilityFinder
	cache      FacilityCache
	log        *zap.Logger
}

type ScreenInput struct {
	Filename string
	Data     []byte

	// Latitude/Longitude are optional; both must be set for facility lookup.
	Latitude  *float64
	Longitude *float64
}

type ScreenResult struct {
	Classification string                    `json:"classification"`
	Label          vision.Label              `json:"label"`
	Percent        float64                   `json:"percent"`
	ImageDataURL   string                    `json:"image_data_url"`
	Insights       []string                  `json:"insights"`
	Facilities     map[string][]geo.Facility `json:"facilities"`
}

func NewScreeningService(classifier ImageClassifier, finder FacilityFinder, cache FacilityCache, log *zap.Logger) *ScreeningService {
	return &ScreeningService{
		classifier: classifier,
		finder:     finder,
		cache:      cache,
		log:        log,
	}
}

// Screen runs the full upload flow: validate, persist to a temp file, verify
// grayscale, classify, pick insights, and (when confidence and coordinates
// allow) look up nearby facilities. The temp file never outlives the call.
func (s *ScreeningService) Screen(ctx context.Context, input ScreenInput) (*ScreenResult, error) {
	ext, mime, err := validateFilename(input.Filename)
	if err != nil {
		return nil, err
	}
	if err := validateCoordinates(input.Latitude, input.Longitude); err != nil {
		return nil, err
	}

	tmpPath := filepath.Join(os.TempDir(), "pneumascan-"+uuid.New().String()+ext)
	if err := os.WriteFile(tmpPath, input.Data, 0o600); err != nil {
		return nil, fmt.Errorf("persist upload failed: %w", err)
	}
	defer func() {
		if err := os.Remove(tmpPath); err != nil && !os.IsNotExist(err) {
			s.log.Warn("remove temp upload failed", zap.String("path", tmpPath), zap.Error(err))
		}
	}()

	raw, err := os.ReadFile(tmpPath)
	if err != nil {
		return nil, fmt.Errorf("read persisted upload failed: %w", err)
	}

	img, err := vision.DecodeImage(raw)
	if err != nil {
		s.log.Error("decode uploaded image failed", zap.String("filename", input.Filename), zap.Error(err))
		return nil, ErrInvalidImage
	}
	if !vision.IsGrayscale(img) {
		return nil, ErrNotGrayscale
	}

	result, err := s.classifier.Classify(raw)
	if err != nil {
		s.log.Error("classification failed", zap.String("filename", input.Filename), zap.Error(err))
		return nil, ErrInvalidImage
	}

	out := &ScreenResult{
		Classification: result.String(),
		Label:          result.Label,
		Percent:        result.Percent,
		ImageDataURL:   fmt.Sprintf("data:%s;base64,%s", mime, base64.StdEncoding.EncodeToString(raw)),
		Insights:       SelectInsights(result.Percent),
		Facilities:     map[string][]geo.Facility{},
	}

	if result.Percent >= insightThreshold && input.Latitude != nil && input.Longitude != nil {
		out.Facilities = s.locateFacilities(ctx, *input.Latitude, *input.Longitude)
	}

	return out, nil
}

// locateFacilities queries every facility group. Lookup failures are swallowed
// into empty groups; they are logged at warn, while genuinely empty results
// are logged at debug so the two cases stay distinguishable.
func (s *ScreeningService) locateFacilities(ctx context.Context, lat, lon float64) map[string][]geo.Facility {
	groups := make(map[string][]geo.Facility, len(facilityGroups))
	for _, group := range facilityGroups {
		facilities, err := s.findWithCache(ctx, lat, lon, group.Amenity)
		if err != nil {
			s.log.Warn("facility lookup failed",
				zap.String("amenity", group.Amenity),
				zap.Error(err))
			groups[group.Key] = []geo.Facility{}
			continue
		}
		if len(facilities) == 0 {
			s.log.Debug("no facilities found", zap.String("amenity", group.Amenity))
			facilities = []geo.Facility{}
		}
		groups[group.Key] = facilities
	}
	return groups
}

func (s *ScreeningService) findWithCache(ctx context.Context, lat, lon float64, amenity string) ([]geo.Facility, error) {
	if s.cache != nil {
		cached, hit, err := s.cache.Get(ctx, lat, lon, amenity)
		if err != nil {
			s.log.Warn("facility cache read failed", zap.String("amenity", amenity), zap.Error(err))
		} else if hit {
			return cached, nil
		}
	}

	facilities, err := s.finder.FindNearby(ctx, lat, lon, amenity)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, lat, lon, amenity, facilities); err != nil {
			s.log.Warn("facility cache write failed", zap.String("amenity", amenity), zap.Error(err))
		}
	}
	return facilities, nil
}

func validateFilename(filename string) (ext, mime string, err error) {
	if strings.TrimSpace(filename) == "" {
		return "", "", ErrNoFilename
	}
	ext = strings.ToLower(filepath.Ext(filename))
	mime, ok := allowedExtensions[ext]
	if !ok {
		return "", "", ErrUnsupportedFormat
	}
	return ext, mime, nil
}

func validateCoordinates(lat, lon *float64) error {
	if lat == nil && lon == nil {
		return nil
	}
	if lat == nil || lon == nil {
		return ErrBadCoordinates
	}
	if *lat < -90 || *lat > 90 || *lon < -180 || *lon > 180 {
		return ErrBadCoordinates
	}
	return nil
}
