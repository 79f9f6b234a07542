package memory

import (
	"fmt"
	"strings"
	"time"

	"ai-study-assist-be/internal/dto"

	"github.com/patrickmn/go-cache"
)

// AnnotationCache holds list results per student and filter set.
type AnnotationCache struct {
	cache *cache.Cache
}

func NewAnnotationCache(ttl time.Duration) *AnnotationCache {
	return &AnnotationCache{
		cache: cache.New(ttl, 2*ttl),
	}
}

func studentPrefix(studentId int64) string {
	return fmt.Sprintf("annotations:%d|", studentId)
}

func annotationKey(studentId int64, f dto.AnnotationFilter) string {
	concept := "-"
	if f.ConceptId != nil {
		concept = fmt.Sprintf("%d", *f.ConceptId)
	}
	return fmt.Sprintf("%s%s|%s|%s", studentPrefix(studentId), f.CourseId, concept, f.AnnotationType)
}

func (c *AnnotationCache) Get(studentId int64, f dto.AnnotationFilter) ([]*dto.AnnotationResponse, bool) {
	if x, found := c.cache.Get(annotationKey(studentId, f)); found {
		return x.([]*dto.AnnotationResponse), true
	}
	return nil, false
}

func (c *AnnotationCache) Set(studentId int64, f dto.AnnotationFilter, list []*dto.AnnotationResponse) {
	c.cache.Set(annotationKey(studentId, f), list, cache.DefaultExpiration)
}

// InvalidateStudent drops every cached list for studentId.
func (c *AnnotationCache) InvalidateStudent(studentId int64) int {
	prefix := studentPrefix(studentId)
	dropped := 0
	for key := range c.cache.Items() {
		if strings.HasPrefix(key, prefix) {
			c.cache.Delete(key)
			dropped++
		}
	}
	return dropped
}
