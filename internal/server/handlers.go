package server

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/dshills/stylist/internal/face"
	"github.com/dshills/stylist/internal/profile"
	"github.com/dshills/stylist/internal/schema"
	"github.com/dshills/stylist/internal/synth"
)

// Response is the body of a successful /analyze or /recommend call.
type Response struct {
	Profile         profile.Profile          `json:"profile"`
	Recommendations schema.RecommendationSet `json:"recommendations"`
}

// RecommendRequest is the JSON body accepted by /recommend.
type RecommendRequest struct {
	Shape    string `json:"shape"`
	SkinTone string `json:"skin_tone"`
	Gender   string `json:"gender"`
	APIKey   string `json:"api_key"`
}

func errorBody(msg string) gin.H { return gin.H{"error": msg} }

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// handleAnalyze accepts a multipart form with an image file, a gender and an
// optional api_key, detects the facial attributes and returns recommendations.
func (s *Server) handleAnalyze(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.opts.MaxUploadBytes)

	fh, err := c.FormFile("image")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, errorBody("image exceeds upload limit"))
			return
		}
		c.JSON(http.StatusBadRequest, errorBody("image file is required"))
		return
	}
	gender := strings.TrimSpace(c.PostForm("gender"))
	if gender == "" {
		c.JSON(http.StatusBadRequest, errorBody("gender is required"))
		return
	}

	f, err := fh.Open()
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, errorBody(err.Error()))
		return
	}
	defer f.Close()
	image, err := io.ReadAll(f)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, errorBody(err.Error()))
		return
	}

	ctx := c.Request.Context()
	attrs, err := s.opts.Analyzer.Analyze(ctx, image)
	if err != nil {
		if errors.Is(err, face.ErrEmptyImage) {
			c.JSON(http.StatusBadRequest, errorBody(err.Error()))
			return
		}
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, errorBody(err.Error()))
		return
	}

	p := attrs.ToProfile(gender)
	set := s.opts.Recommender.Recommend(ctx, synth.Request{
		Profile: p,
		APIKey:  c.PostForm("api_key"),
	})
	c.JSON(http.StatusOK, Response{Profile: profile.Normalize(p), Recommendations: set})
}

// handleRecommend skips detection and takes the profile as JSON.
func (s *Server) handleRecommend(c *gin.Context) {
	var body RecommendRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, errorBody("invalid JSON body: "+err.Error()))
		return
	}
	p := profile.Profile{Shape: body.Shape, SkinTone: body.SkinTone, Gender: body.Gender}
	set := s.opts.Recommender.Recommend(c.Request.Context(), synth.Request{
		Profile: p,
		APIKey:  body.APIKey,
	})
	c.JSON(http.StatusOK, Response{Profile: profile.Normalize(p), Recommendations: set})
}
