package services

import "encoding/json"

type WsNotify struct {
	NotifyType string `json:"notify_type"`
	Message    string `json:"message"`
}

// SendWsNotify - отправка уведомления через WebSocket
func SendWsNotify(userID string, notifyType string, message string) error {
	if len(notifyType) == 0 {
		notifyType = "info"
	}
	if len(message) == 0 {
		return nil
	}
	// Обрезаем по рунам, не по байтам
	if runes := []rune(message); len(runes) > 100 {
		message = string(runes[:100]) + "..."
	}
	// Формируем сообщение в формате JSON
	notify := WsNotify{NotifyType: notifyType, Message: message}
	jsonData, err := json.Marshal(notify)
	if err != nil {
		return err
	}
	GlobalWSConnManager.Send(userID, jsonData)
	return nil
}
