package api

import "github.com/samcharles93/fbxcore/internal/export"

type DocumentSummary struct {
	ID        string       `json:"id"`
	Object    string       `json:"object"`
	Name      string       `json:"name,omitempty"`
	Size      int64        `json:"size"`
	CreatedAt int64        `json:"created_at"`
	Stats     export.Stats `json:"stats"`
}

type DocumentList struct {
	Object string            `json:"object"`
	Data   []DocumentSummary `json:"data"`
}

type DeleteDocumentResp struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Deleted bool   `json:"deleted"`
}

type ResponseError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    string `json:"code,omitempty"`
	Param   string `json:"param,omitempty"`
}

type HealthResp struct {
	Status    string `json:"status"`
	Documents int    `json:"documents"`
}
