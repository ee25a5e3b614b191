// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package settingsrs

import (
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/momeni/clean-lending/pkg/adapter/restful/gin/serdser"
	"github.com/momeni/clean-lending/pkg/core/model"
)

func (rs *resource) DserUpdateSettingsReq(
	c *gin.Context,
) (*model.Settings, bool) {
	req := &model.Settings{}
	if ok := serdser.Bind(c, req, binding.JSON); !ok {
		return nil, false
	}
	return req, true
}

// SettingsResp reports the visible settings (mutable or immutable) in
// the settings field, and the minimum and maximum acceptable values of
// the mutable settings in the min_bounds and max_bounds fields. Those
// settings which do not have a known lower or upper bound are null.
type SettingsResp struct {
	Settings  *model.VisibleSettings `json:"settings"`
	MinBounds *model.Settings        `json:"min_bounds"`
	MaxBounds *model.Settings        `json:"max_bounds"`
}
