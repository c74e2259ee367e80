package wsmodels

type ServerMessage struct {
	ToUserID    string `json:"-"`
	ID          string `json:"id"`
	Time        string `json:"time"` // event time
	Code        string `json:"code"` // notification type
	Title       string `json:"title"`
	Msg         string `json:"msg"`
	ReferenceID string `json:"reference_id"`
}
