package handler

import (
	"net/http"
	"strconv"

	"paydocs-server/internal/model"
	"paydocs-server/internal/model/requestresponse"
	"paydocs-server/internal/ports"
	"paydocs-server/internal/util"

	"github.com/go-chi/chi/v5"
)

// multipartOverhead : запас на поля формы сверх размера файла
const multipartOverhead = 1 << 20

type DocumentHandler struct {
	ports.DocumentService
	maxUploadBytes int64
}

func NewDocumentHandler(documentService ports.DocumentService, maxUploadBytes int64) *DocumentHandler {
	return &DocumentHandler{documentService, maxUploadBytes}
}

// CreateDocument godoc
// @Summary Загрузка нового документа
// @Description Загружает PDF и его метаданные (multipart/form-data). Содержимое хранится по адресу содержимого (CID).
// @Tags Documents
// @Accept multipart/form-data
// @Produce json
// @Param title formData string true "Название"
// @Param description formData string false "Описание"
// @Param category formData string false "Категория, по умолчанию Uploaded"
// @Param price formData string true "Цена, например 5.00 (0 для бесплатного)"
// @Param duration_days formData int false "Срок размещения в днях, по умолчанию 30"
// @Param visibility formData string false "public или private"
// @Param file formData file true "PDF файл"
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 201 {object} requestresponse.GetDocumentResponse
// @Failure 400 {object} requestresponse.ErrorResponse "Неверный формат запроса, не PDF или слишком большой файл"
// @Failure 401 {object} requestresponse.ErrorResponse "Пользователь не авторизован"
// @Failure 500 {object} requestresponse.ErrorResponse "Внутренняя ошибка сервера"
// @Router /api/docs [post]
func (h *DocumentHandler) CreateDocument(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes+multipartOverhead)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		util.HandleError(w, "неверный формат запроса", http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		util.HandleError(w, "файл не найден в запросе", http.StatusBadRequest)
		return
	}
	defer file.Close()

	durationDays := 0
	if raw := r.FormValue("duration_days"); raw != "" {
		durationDays, err = strconv.Atoi(raw)
		if err != nil {
			util.HandleError(w, "duration_days должен быть числом", http.StatusBadRequest)
			return
		}
	}

	document, err := h.DocumentService.Upload(r.Context(), actor, ports.UploadInput{
		Title:        r.FormValue("title"),
		Description:  r.FormValue("description"),
		Category:     r.FormValue("category"),
		Price:        r.FormValue("price"),
		DurationDays: durationDays,
		Visibility:   model.Visibility(r.FormValue("visibility")),
		Filename:     header.Filename,
		MimeType:     header.Header.Get("Content-Type"),
		Content:      file,
	})
	if err != nil {
		util.HandleAppError(w, err)
		return
	}

	writeDocument(w, http.StatusCreated, document)
}

// GetDocument godoc
// @Summary Получение метаданных документа
// @Description Возвращает метаданные документа по id. Просмотр не владельцем увеличивает счётчик просмотров.
// @Tags Documents
// @Produce json
// @Param doc_id path string true "ID документа"
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 200 {object} requestresponse.GetDocumentResponse
// @Failure 401 {object} requestresponse.ErrorResponse
// @Failure 404 {object} requestresponse.ErrorResponse
// @Router /api/docs/{doc_id} [get]
func (h *DocumentHandler) GetDocument(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	document, err := h.DocumentService.Get(r.Context(), actor, chi.URLParam(r, "doc_id"))
	if err != nil {
		util.HandleAppError(w, err)
		return
	}

	if r.Method == http.MethodHead {
		w.WriteHeader(http.StatusOK)
		return
	}

	writeDocument(w, http.StatusOK, document)
}

// GetPublicDocument godoc
// @Summary Публичный документ
// @Description Метаданные публичного документа, срок размещения которого не истёк
// @Tags Public
// @Produce json
// @Param doc_id path string true "ID документа"
// @Success 200 {object} requestresponse.GetDocumentResponse
// @Failure 404 {object} requestresponse.ErrorResponse
// @Router /public/docs/{doc_id} [get]
func (h *DocumentHandler) GetPublicDocument(w http.ResponseWriter, r *http.Request) {
	document, err := h.DocumentService.GetPublic(r.Context(), chi.URLParam(r, "doc_id"))
	if err != nil {
		util.HandleAppError(w, err)
		return
	}

	if r.Method == http.MethodHead {
		w.WriteHeader(http.StatusOK)
		return
	}

	writeDocument(w, http.StatusOK, document)
}

// ListPublicDocuments godoc
// @Summary Каталог
// @Description Публичные действующие документы, новые первыми. Поиск по названию и описанию, фильтр категории.
// @Tags Public
// @Produce json
// @Param q query string false "Текст поиска"
// @Param category query string false "Категория"
// @Param cursor query string false "Курсор следующей страницы"
// @Param limit query int false "Размер страницы"
// @Success 200 {object} requestresponse.ListDocumentsResponse
// @Failure 400 {object} requestresponse.ErrorResponse
// @Router /public/docs [get]
func (h *DocumentHandler) ListPublicDocuments(w http.ResponseWriter, r *http.Request) {
	limit, err := queryLimit(r)
	if err != nil {
		util.HandleAppError(w, err)
		return
	}

	query := r.URL.Query()
	documents, next, err := h.DocumentService.ListPublic(r.Context(), model.DocumentFilter{
		Query:    query.Get("q"),
		Category: query.Get("category"),
		Cursor:   query.Get("cursor"),
		Limit:    limit,
	})
	if err != nil {
		util.HandleAppError(w, err)
		return
	}

	writeDocuments(w, documents, next)
}

// ListMyDocuments godoc
// @Summary Мои документы
// @Description Документы, загруженные текущим пользователем
// @Tags Documents
// @Produce json
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 200 {object} requestresponse.ListDocumentsResponse
// @Failure 401 {object} requestresponse.ErrorResponse
// @Router /api/docs [get]
func (h *DocumentHandler) ListMyDocuments(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	documents, err := h.DocumentService.ListByOwner(r.Context(), actor)
	if err != nil {
		util.HandleAppError(w, err)
		return
	}

	writeDocuments(w, documents, "")
}

// Collection godoc
// @Summary Коллекция
// @Description Свои, открытые владельцем и оплаченные документы, новые первыми
// @Tags Documents
// @Produce json
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 200 {object} requestresponse.ListDocumentsResponse
// @Failure 401 {object} requestresponse.ErrorResponse
// @Router /api/collection [get]
func (h *DocumentHandler) Collection(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	documents, err := h.DocumentService.Collection(r.Context(), actor)
	if err != nil {
		util.HandleAppError(w, err)
		return
	}

	writeDocuments(w, documents, "")
}

// UpdateDocument godoc
// @Summary Изменение документа
// @Description Владелец или администратор меняет название, описание, категорию, цену или видимость
// @Tags Documents
// @Accept json
// @Produce json
// @Param doc_id path string true "ID документа"
// @Param body body requestresponse.UpdateDocumentRequest true "Изменяемые поля"
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 200 {object} requestresponse.GetDocumentResponse
// @Failure 400 {object} requestresponse.ErrorResponse
// @Failure 403 {object} requestresponse.ErrorResponse
// @Failure 404 {object} requestresponse.ErrorResponse
// @Router /api/docs/{doc_id} [put]
func (h *DocumentHandler) UpdateDocument(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	var req requestresponse.UpdateDocumentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return
	}

	update := model.DocumentUpdate{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
	}
	if req.Price != nil {
		price, err := model.ParseAmount(*req.Price)
		if err != nil {
			util.HandleError(w, "неверный формат цены", http.StatusBadRequest)
			return
		}
		update.Price = &price
	}
	if req.Visibility != nil {
		visibility := model.Visibility(*req.Visibility)
		update.Visibility = &visibility
	}

	document, err := h.DocumentService.Update(r.Context(), actor, chi.URLParam(r, "doc_id"), update)
	if err != nil {
		util.HandleAppError(w, err)
		return
	}

	writeDocument(w, http.StatusOK, document)
}

// DeleteDocument godoc
// @Summary Удаление документа
// @Description Владелец или администратор снимает документ с размещения
// @Tags Documents
// @Param doc_id path string true "ID документа"
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 204
// @Failure 403 {object} requestresponse.ErrorResponse
// @Failure 404 {object} requestresponse.ErrorResponse
// @Router /api/docs/{doc_id} [delete]
func (h *DocumentHandler) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	if err := h.DocumentService.Delete(r.Context(), actor, chi.URLParam(r, "doc_id")); err != nil {
		util.HandleAppError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ShareDocument godoc
// @Summary Открыть доступ к документу
// @Description Владелец открывает доступ пользователю без оплаты
// @Tags Documents
// @Accept json
// @Produce json
// @Param doc_id path string true "ID документа"
// @Param body body requestresponse.ShareDocumentRequest true "UUID пользователя"
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 200 {object} requestresponse.SuccessResponse
// @Failure 400 {object} requestresponse.ErrorResponse
// @Failure 403 {object} requestresponse.ErrorResponse
// @Failure 404 {object} requestresponse.ErrorResponse
// @Router /api/docs/{doc_id}/grants [post]
func (h *DocumentHandler) ShareDocument(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	var req requestresponse.ShareDocumentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return
	}
	if req.TargetUserUUID == "" {
		util.HandleError(w, "target_user_uuid обязателен", http.StatusBadRequest)
		return
	}

	if err := h.DocumentService.AddGrant(r.Context(), actor, chi.URLParam(r, "doc_id"), req.TargetUserUUID); err != nil {
		util.HandleAppError(w, err)
		return
	}

	util.WriteJSON(w, http.StatusOK, requestresponse.SuccessResponse{Message: "доступ предоставлен"})
}

// ListGrants godoc
// @Summary Список выданных доступов
// @Tags Documents
// @Produce json
// @Param doc_id path string true "ID документа"
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 200 {object} requestresponse.ListGrantsResponse
// @Failure 403 {object} requestresponse.ErrorResponse
// @Failure 404 {object} requestresponse.ErrorResponse
// @Router /api/docs/{doc_id}/grants [get]
func (h *DocumentHandler) ListGrants(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	grants, err := h.DocumentService.ListGrants(r.Context(), actor, chi.URLParam(r, "doc_id"))
	if err != nil {
		util.HandleAppError(w, err)
		return
	}

	resp := requestresponse.ListGrantsResponse{}
	resp.Data.Grants = grants
	util.WriteJSON(w, http.StatusOK, resp)
}

// RemoveGrantFromDocument godoc
// @Summary Закрыть доступ к документу
// @Tags Documents
// @Param doc_id path string true "ID документа"
// @Param user_uuid path string true "UUID пользователя"
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 204
// @Failure 403 {object} requestresponse.ErrorResponse
// @Failure 404 {object} requestresponse.ErrorResponse
// @Router /api/docs/{doc_id}/grants/{user_uuid} [delete]
func (h *DocumentHandler) RemoveGrantFromDocument(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	err := h.DocumentService.RemoveGrant(r.Context(), actor, chi.URLParam(r, "doc_id"), chi.URLParam(r, "user_uuid"))
	if err != nil {
		util.HandleAppError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func writeDocument(w http.ResponseWriter, statusCode int, document *model.Document) {
	util.WriteJSON(w, statusCode, requestresponse.GetDocumentResponse{
		Data: requestresponse.GetDocumentData{Document: requestresponse.DocumentResponseFromModel(document)},
	})
}

func writeDocuments(w http.ResponseWriter, documents []*model.Document, next string) {
	resp := requestresponse.ListDocumentsResponse{}
	resp.Data.Docs = requestresponse.DocumentResponsesFromModel(documents)
	resp.NextCursor = next
	resp.Count = len(documents)
	util.WriteJSON(w, http.StatusOK, resp)
}
