package stage

import (
	"fmt"
	"strings"
)

// Image size limits
const (
	MinImageWidth  = 320
	MinImageHeight = 240
	MaxImageSide   = 4096
)

// Severity of a validation issue.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
)

func (s Severity) String() string {
	if s == SeverityWarning {
		return "warning"
	}
	return "error"
}

// IssueCode is a stable classification of a validation issue.
type IssueCode string

const (
	CodeMissingName        IssueCode = "missing_name"
	CodeInvalidName        IssueCode = "invalid_name"
	CodeNoLayers           IssueCode = "no_layers"
	CodeNoVisibleLayers    IssueCode = "no_visible_layers"
	CodeDuplicateLayerID   IssueCode = "duplicate_layer_id"
	CodeImageTooSmall      IssueCode = "image_too_small"
	CodeImageTooLarge      IssueCode = "image_too_large"
	CodeGroundOutOfRange   IssueCode = "ground_out_of_range"
	CodeInvalidCamera      IssueCode = "invalid_camera_bounds"
	CodeCameraExceedsImage IssueCode = "camera_exceeds_image"
	CodePlayerOutOfBounds  IssueCode = "player_out_of_bounds"
	CodeShadowIntensity    IssueCode = "shadow_intensity_range"
)

// Issue is one finding.
type Issue struct {
	Code     IssueCode
	Severity Severity
	Message  string
}

func (i Issue) String() string {
	return fmt.Sprintf("%s [%s]: %s", i.Severity, i.Code, i.Message)
}

// ValidationResult lists errors, which block export, and warnings, which
// need confirmation.
type ValidationResult struct {
	Errors   []Issue
	Warnings []Issue
}

func (r ValidationResult) HasErrors() bool   { return len(r.Errors) > 0 }
func (r ValidationResult) HasWarnings() bool { return len(r.Warnings) > 0 }

// Has reports whether an issue with code is present.
func (r ValidationResult) Has(code IssueCode) bool {
	for _, list := range [][]Issue{r.Errors, r.Warnings} {
		for _, i := range list {
			if i.Code == code {
				return true
			}
		}
	}
	return false
}

// Codes returns every issue code, errors first.
func (r ValidationResult) Codes() []IssueCode {
	codes := make([]IssueCode, 0, len(r.Errors)+len(r.Warnings))
	for _, i := range r.Errors {
		codes = append(codes, i.Code)
	}
	for _, i := range r.Warnings {
		codes = append(codes, i.Code)
	}
	return codes
}

func (r *ValidationResult) errorf(code IssueCode, format string, args ...any) {
	r.Errors = append(r.Errors, Issue{Code: code, Severity: SeverityError, Message: fmt.Sprintf(format, args...)})
}

func (r *ValidationResult) warnf(code IssueCode, format string, args ...any) {
	r.Warnings = append(r.Warnings, Issue{Code: code, Severity: SeverityWarning, Message: fmt.Sprintf(format, args...)})
}

// Validate checks a spec without modifying it. Rules run in this order:
// name, layers, image size, ground line, camera bounds, player starts,
// shadow. Rules that need an image are skipped when there are no layers.
func Validate(s *StageSpec) ValidationResult {
	var r ValidationResult

	switch {
	case strings.TrimSpace(s.Name) == "":
		r.errorf(CodeMissingName, "stage name is empty")
	default:
		if problem := NameProblem(s.Name); problem != "" {
			r.errorf(CodeInvalidName, "stage name %q %s", s.Name, problem)
		}
	}

	if len(s.Layers) == 0 {
		r.errorf(CodeNoLayers, "stage has no background layers")
		validateShadow(s, &r)
		return r
	}
	if len(s.VisibleLayers()) == 0 {
		r.errorf(CodeNoVisibleLayers, "stage has no visible background layer")
	}
	ids := make(map[string]bool, len(s.Layers))
	for _, l := range s.Layers {
		if ids[l.ID] {
			r.errorf(CodeDuplicateLayerID, "layer id %q is used more than once", l.ID)
		}
		ids[l.ID] = true
	}

	img, _ := s.ImageSize()
	if img.Width < MinImageWidth || img.Height < MinImageHeight {
		r.errorf(CodeImageTooSmall, "background image is %dx%d, minimum is %dx%d", img.Width, img.Height, MinImageWidth, MinImageHeight)
	}
	if img.Width > MaxImageSide || img.Height > MaxImageSide {
		r.warnf(CodeImageTooLarge, "background image is %dx%d, larger than %d on a side", img.Width, img.Height, MaxImageSide)
	}

	if s.GroundY < 0 || s.GroundY > img.Height {
		r.errorf(CodeGroundOutOfRange, "ground line %d is outside the image height 0..%d", s.GroundY, img.Height)
	}

	g, _ := s.Derived()
	cam := s.Camera
	if cam.BoundLeft >= 0 || cam.BoundRight <= 0 {
		r.errorf(CodeInvalidCamera, "camera bounds %d..%d must extend to both sides of center", cam.BoundLeft, cam.BoundRight)
	}
	if cam.BoundLeft < -g.PanX || cam.BoundRight > g.PanX || cam.BoundHigh < -g.PanY || cam.BoundLow > 0 {
		r.warnf(CodeCameraExceedsImage,
			"camera bounds left=%d right=%d high=%d low=%d reveal area outside the image (limits %d..%d, %d..0)",
			cam.BoundLeft, cam.BoundRight, cam.BoundHigh, cam.BoundLow, -g.PanX, g.PanX, -g.PanY)
	}

	for i, x := range []int{s.Players.P1StartX, s.Players.P2StartX} {
		if x < g.PlayerLeft || x > g.PlayerRight {
			r.warnf(CodePlayerOutOfBounds, "player %d start x %d is outside the recommended range %d..%d", i+1, x, g.PlayerLeft, g.PlayerRight)
		}
	}

	validateShadow(s, &r)
	return r
}

func validateShadow(s *StageSpec, r *ValidationResult) {
	if s.Shadow.Intensity < 0 || s.Shadow.Intensity > MaxShadowIntensity {
		r.errorf(CodeShadowIntensity, "shadow intensity %d is outside 0..%d", s.Shadow.Intensity, MaxShadowIntensity)
	}
}
