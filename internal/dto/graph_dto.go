package dto

import "ai-study-assist-be/pkg/graph"

type GraphSceneResponse struct {
	CourseId string      `json:"course_id"`
	Scene    graph.Scene `json:"scene"`
}

type PrerequisitesResponse struct {
	ConceptId     int64    `json:"concept_id"`
	Prerequisites []string `json:"prerequisites"`
}

// GraphSceneMessage is pushed over the websocket when a student's view changes.
type GraphSceneMessage struct {
	CourseId string      `json:"course_id"`
	Scene    graph.Scene `json:"scene"`
}
