package requestresponse

import (
	"time"

	"paydocs-server/internal/model"
)

// DocumentResponse : описывает документ для JSON-ответа
type DocumentResponse struct {
	UUID         string     `json:"id" example:"0f8fad5b-d9cb-469f-a165-70867728950e"`
	OwnerUUID    string     `json:"owner_uuid" example:"123e4567-e89b-12d3-a456-426614174000"`
	Title        string     `json:"title" example:"Конспект лекций"`
	Description  string     `json:"description" example:"Полный курс"`
	Category     string     `json:"category" example:"Uploaded"`
	ContentHash  string     `json:"content_hash" example:"bafkreihdwdcefgh4dqkjv67uzcmw7ojee6xedzdetojuzjevtenxquvyku"`
	SizeBytes    int64      `json:"size_bytes" example:"102400"`
	Pages        int        `json:"pages" example:"12"`
	MimeType     string     `json:"mime" example:"application/pdf"`
	Price        string     `json:"price" example:"5.00"`
	Visibility   string     `json:"visibility" example:"public"`
	DurationDays int        `json:"duration_days" example:"30"`
	Views        int64      `json:"views" example:"42"`
	CreatedAt    time.Time  `json:"created_at"`
	ExpiresAt    time.Time  `json:"expires_at"`
	DeletedAt    *time.Time `json:"deleted_at,omitempty"`
}

// DocumentResponseFromModel : конвертирует model.Document в DocumentResponse
func DocumentResponseFromModel(doc *model.Document) DocumentResponse {
	return DocumentResponse{
		UUID:         doc.ID,
		OwnerUUID:    doc.OwnerUUID,
		Title:        doc.Title,
		Description:  doc.Description,
		Category:     doc.Category,
		ContentHash:  doc.ContentHash,
		SizeBytes:    doc.SizeBytes,
		Pages:        doc.Pages,
		MimeType:     doc.MimeType,
		Price:        doc.Price.String(),
		Visibility:   string(doc.Visibility),
		DurationDays: doc.DurationDays,
		Views:        doc.Views,
		CreatedAt:    doc.CreatedAt,
		ExpiresAt:    doc.ExpiresAt,
		DeletedAt:    doc.DeletedAt,
	}
}

func DocumentResponsesFromModel(documents []*model.Document) []DocumentResponse {
	responses := make([]DocumentResponse, 0, len(documents))
	for _, document := range documents {
		responses = append(responses, DocumentResponseFromModel(document))
	}
	return responses
}

// GetDocumentResponse : описывает ответ для одного документа
type GetDocumentResponse struct {
	Data GetDocumentData `json:"data"`
}

type GetDocumentData struct {
	Document DocumentResponse `json:"document"`
}

// ListDocumentsResponse : ответ API со списком документов
type ListDocumentsResponse struct {
	Data struct {
		Docs []DocumentResponse `json:"docs"`
	} `json:"data"`
	NextCursor string `json:"next_cursor,omitempty" example:"2026-03-01T12:00:00Z|0f8fad5b-d9cb-469f-a165-70867728950e"`
	Count      int    `json:"count" example:"10"`
}

// UpdateDocumentRequest : изменяемые поля, отсутствующие не меняются
type UpdateDocumentRequest struct {
	Title       *string `json:"title,omitempty" example:"Новое название"`
	Description *string `json:"description,omitempty" example:"Новое описание"`
	Category    *string `json:"category,omitempty" example:"Books"`
	Price       *string `json:"price,omitempty" example:"7.50"`
	Visibility  *string `json:"visibility,omitempty" example:"private"`
}

// ShareDocumentRequest : представляет тело запроса для предоставления доступа
type ShareDocumentRequest struct {
	TargetUserUUID string `json:"target_user_uuid" example:"123e4567-e89b-12d3-a456-426614174000"`
}

// ListGrantsResponse : пользователи с доступом от владельца
type ListGrantsResponse struct {
	Data struct {
		Grants []model.DocumentGrant `json:"grants"`
	} `json:"data"`
}

// SuccessResponse : стандартный ответ успешного выполнения операции
type SuccessResponse struct {
	Message string `json:"message" example:"Операция выполнена успешно"`
}
