package queue

const TaskTypePublishPost = "publish:post"

type PublishPostPayload struct {
	RecordID string `json:"record_id"`
}
