package gateway

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"epic_quiz_client/internal/model"

	"github.com/gin-gonic/gin"
)

func newFakeSecondary(t *testing.T, register func(r *gin.Engine)) *RESTProvider {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	register(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return NewRESTProvider(srv.URL, 5*time.Second, 100, time.Minute)
}

func TestRESTListEpics(t *testing.T) {
	p := newFakeSecondary(t, func(r *gin.Engine) {
		r.GET("/epics", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"success": true,
				"data": []gin.H{
					{"id": "ramayana", "title": "The Ramayana", "is_available": true},
					{"id": "mahabharata", "title": "The Mahabharata", "is_available": true},
				},
			})
		})
	})

	epics, err := p.ListEpics(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(epics) != 2 || epics[0].ID != "ramayana" {
		t.Errorf("epics = %+v", epics)
	}
}

func TestRESTBuildPackageQueryAndDecode(t *testing.T) {
	var gotQuery map[string]string
	p := newFakeSecondary(t, func(r *gin.Engine) {
		r.GET("/quiz", func(c *gin.Context) {
			gotQuery = map[string]string{
				"epicId":     c.Query("epicId"),
				"count":      c.Query("count"),
				"difficulty": c.Query("difficulty"),
				"category":   c.Query("category"),
			}
			c.JSON(http.StatusOK, gin.H{
				"success": true,
				"data": gin.H{
					"quiz_id":    "pkg-9",
					"epic_id":    "ramayana",
					"epic_title": "The Ramayana",
					"questions": []gin.H{
						{
							"id":                "q1",
							"epic_id":           "ramayana",
							"category":          "events",
							"question_text":     "Who built the bridge to Lanka?",
							"options":           []string{"Rama", "The vanara army", "Ravana", "Hanuman alone"},
							"correct_answer_id": 1,
						},
					},
					"metadata": gin.H{"language": "en", "difficulty": "medium"},
					"block":    gin.H{"id": "b2", "epic_id": "ramayana", "synthesized": false},
				},
			})
		})
	})

	pkg, err := p.BuildPackage(context.Background(), PackageRequest{
		EpicID: "ramayana",
		Count:  7,
		Filter: Filters{Difficulty: model.DifficultyMedium, Category: model.CategoryEvents},
	})
	if err != nil {
		t.Fatal(err)
	}
	if gotQuery["epicId"] != "ramayana" || gotQuery["count"] != "7" ||
		gotQuery["difficulty"] != "medium" || gotQuery["category"] != "events" {
		t.Errorf("query = %v", gotQuery)
	}
	if pkg.ID != "pkg-9" || len(pkg.Questions) != 1 {
		t.Errorf("package = %+v", pkg)
	}
	if pkg.Questions[0].CorrectAnswer != 1 {
		t.Errorf("correct answer index lost in decode")
	}
	if pkg.Block == nil || pkg.Block.ID != "b2" || pkg.Block.Synthesized {
		t.Errorf("block = %+v", pkg.Block)
	}
	if pkg.DownloadedAt.IsZero() {
		t.Errorf("download timestamp not stamped")
	}
}

func TestRESTErrorMapping(t *testing.T) {
	p := newFakeSecondary(t, func(r *gin.Engine) {
		r.GET("/epics/missing", func(c *gin.Context) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "epic not found"})
		})
		r.GET("/epics/bad", func(c *gin.Context) {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "bad epic id"})
		})
		r.GET("/epics/broken", func(c *gin.Context) {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "db down"})
		})
	})

	tests := []struct {
		path string
		want ErrorKind
	}{
		{"missing", KindNotFound},
		{"bad", KindInvalid},
		{"broken", KindUnreachable},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			_, err := p.GetEpic(context.Background(), tt.path)
			if err == nil {
				t.Fatal("expected error")
			}
			if KindOf(err) != tt.want {
				t.Errorf("kind = %v, want %v", KindOf(err), tt.want)
			}
		})
	}
}

func TestRESTEnvelopeFailure(t *testing.T) {
	// 2xx 但 success=false：按失败处理（网关层面会继续回退/报不可达）
	p := newFakeSecondary(t, func(r *gin.Engine) {
		r.GET("/epics", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"success": false, "error": "generation failed"})
		})
	})
	if _, err := p.ListEpics(context.Background()); err == nil {
		t.Fatal("success=false envelope must be an error")
	}
}

func TestRESTSubmit(t *testing.T) {
	var got model.SubmissionPayload
	p := newFakeSecondary(t, func(r *gin.Engine) {
		r.POST("/quiz/submit", func(c *gin.Context) {
			if err := c.ShouldBindJSON(&got); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
				return
			}
			c.JSON(http.StatusOK, gin.H{"success": true})
		})
	})

	payload := &model.SubmissionPayload{
		QuizID: "pkg-1",
		EpicID: "ramayana",
		Answers: []model.SubmissionAnswer{
			{QuestionID: "q1", UserAnswer: 2, TimeSpent: 11},
		},
		TimeSpent:  42,
		DeviceType: "android",
		AppVersion: "1.0.0",
	}
	if err := p.SubmitQuiz(context.Background(), payload); err != nil {
		t.Fatal(err)
	}
	if got.QuizID != "pkg-1" || len(got.Answers) != 1 || got.Answers[0].TimeSpent != 11 {
		t.Errorf("server received %+v", got)
	}
}

func TestRESTDeepDive(t *testing.T) {
	p := newFakeSecondary(t, func(r *gin.Engine) {
		r.GET("/questions/q1/deep-dive", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"success": true,
				"data": gin.H{
					"id":               "dd1",
					"question_id":      "q1",
					"cultural_context": "The bridge episode is celebrated in Rama Setu traditions.",
				},
			})
		})
	})

	d, err := p.GetDeepDive(context.Background(), "q1")
	if err != nil {
		t.Fatal(err)
	}
	if d.QuestionID != "q1" || d.CulturalContext == "" {
		t.Errorf("deep dive = %+v", d)
	}
}
