package handler

import (
	"Rendezvous/internal/api/config"
	"Rendezvous/internal/pkg/consts"
	"Rendezvous/internal/pkg/util"
	"Rendezvous/internal/service"
	"strconv"

	"github.com/gin-gonic/gin"
)

func currentUserID(c *gin.Context) uint64 {
	return c.GetUint64(consts.CtxUserID)
}

func uintParam(c *gin.Context, name string) (uint64, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, service.ErrInvalidRequest
	}
	return id, nil
}

func imConfig() config.IMConfig {
	if config.Cfg != nil {
		return config.Cfg.IM
	}
	return config.Default().IM
}

// pageQuery 解析 page / pageSize / sort
func pageQuery(c *gin.Context, defaultSort string) util.Page {
	cfg := imConfig()
	return util.ParsePage(c.Query("page"), c.Query("pageSize"), c.Query("sort"), cfg.DefaultPageSize, cfg.MaxPageSize, defaultSort)
}
