package ui

import tele "gopkg.in/telebot.v4"

// NewArticleResult creates a plain-text ArticleResult for inline query answers.
// Catalog names are user input, so no parse mode is set.
func NewArticleResult(id, title, description, text string) *tele.ArticleResult {
	result := &tele.ArticleResult{
		Title:       title,
		Description: description,
		Text:        text,
	}
	result.SetResultID(id)
	return result
}
