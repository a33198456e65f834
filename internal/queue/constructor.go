package queue

import (
	"github.com/harshit961695/unipost/internal/repository"
	"github.com/harshit961695/unipost/internal/service"
)

type Queue struct {
	pr repository.PostRepository
	ps service.PostService
	pb service.PublishService
}

func NewQueue(
	pr repository.PostRepository,
	ps service.PostService,
	pb service.PublishService) *Queue {
	return &Queue{
		pr: pr,
		ps: ps,
		pb: pb,
	}
}

const TaskTypePublishPost = "publish:post"

type PublishPostPayload struct {
	PostID int64 `json:"post_id"`
}
