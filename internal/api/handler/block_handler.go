package handler

import (
	"Rendezvous/internal/api/dto"
	"Rendezvous/internal/pkg/response"
	"Rendezvous/internal/service"

	"github.com/gin-gonic/gin"
)

type BlockHandler struct {
	blockService service.UserBlockService
}

func NewBlockHandler(blockService service.UserBlockService) *BlockHandler {
	return &BlockHandler{blockService: blockService}
}

func (s *BlockHandler) Block(c *gin.Context) {
	target, err := uintParam(c, "userId")
	if err != nil {
		response.Error(c, err)
		return
	}
	if err = s.blockService.Block(c.Request.Context(), currentUserID(c), target); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

func (s *BlockHandler) Unblock(c *gin.Context) {
	target, err := uintParam(c, "userId")
	if err != nil {
		response.Error(c, err)
		return
	}
	if err = s.blockService.Unblock(c.Request.Context(), currentUserID(c), target); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// List 当前用户屏蔽的用户 ID
func (s *BlockHandler) List(c *gin.Context) {
	ids, err := s.blockService.GetBlockedIDs(c.Request.Context(), currentUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	if ids == nil {
		ids = []uint64{}
	}
	response.Success(c, &dto.BlockListDTO{UserIDs: ids})
}
