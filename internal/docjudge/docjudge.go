package docjudge

import (
	"rapidmandados_backend/internal/logger"
	"rapidmandados_backend/internal/models"
)

// Result - вердикт автоматической проверки документа.
type Result struct {
	IsValid    bool
	Confidence float64
	Issues     []string
}

// Judge оценивает загруженный документ и возвращает вердикт с уверенностью.
// Реализация может быть как локальной эвристикой, так и внешним OCR-сервисом.
type Judge interface {
	Validate(docType models.DocumentType, fileData string) Result
}

// AutoJudge - встроенная эвристическая проверка.
// Отбрасывает слишком маленькие файлы, остальное одобряет
// с фиксированной уверенностью. Замена на настоящий OCR-пайплайн
// не потребует менять вызывающий код.
type AutoJudge struct{}

func NewAutoJudge() Judge {
	return &AutoJudge{}
}

const (
	minFileDataLen = 100
	autoConfidence = 0.92
	zeroConfidence = 0.0
)

func (j *AutoJudge) Validate(docType models.DocumentType, fileData string) Result {
	if len(fileData) < minFileDataLen {
		return Result{
			IsValid:    false,
			Confidence: zeroConfidence,
			Issues:     []string{"Archivo muy pequeño o inválido"},
		}
	}

	logger.Info("📄 Document auto-validation completed",
		"document_type", string(docType),
		"confidence", autoConfidence,
	)

	return Result{
		IsValid:    true,
		Confidence: autoConfidence,
	}
}
