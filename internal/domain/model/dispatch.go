package model

import "fmt"

// DispatchEvent is a write-once, fire-and-forget message handed to the publish
// sink. A successful publish only guarantees the sink accepted the message,
// not that a worker has started or will succeed.
type DispatchEvent struct {
	Topic   string
	Payload []byte
}

// TopicName constructs a fully qualified topic name from a project and topic id.
func TopicName(projectID, topicID string) string {
	return fmt.Sprintf("projects/%s/topics/%s", projectID, topicID)
}
