/*
 * MIT License
 *
 * Copyright (c) 2020 Nicolas JUHEL
 */

package webfront

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/RolandTaverner/PraeTor-sub000/controller"
	"github.com/RolandTaverner/PraeTor-sub000/option"
	"github.com/RolandTaverner/PraeTor-sub000/process"
)

func (s *Server) handleControllerInfo(c *gin.Context) {
	info, err := await(s.ctrl.GetControllerInfo)
	if err != nil {
		s.writeError(c, "getControllerInfo", err)
		return
	}
	writeJSON(c, gin.H{"pid": info.PID})
}

func (s *Server) handleGetProcesses(c *gin.Context) {
	names, err := await(s.ctrl.GetProcesses)
	if err != nil {
		s.writeError(c, "getProcesses", err)
		return
	}
	writeJSON(c, gin.H{"processes": names})
}

func (s *Server) handleGetProcessInfo(c *gin.Context) {
	name := c.Param("process")
	info, err := await(func(done func(controller.ProcessInfo, error)) {
		s.ctrl.GetProcessInfo(name, done)
	})
	if err != nil {
		s.writeError(c, "getProcessInfo", err)
		return
	}
	writeJSON(c, gin.H{
		"name":     info.Name,
		"state":    info.State.String(),
		"storages": info.Storages,
	})
}

func (s *Server) handleGetProcessConfigs(c *gin.Context) {
	name := c.Param("process")
	names, err := await(func(done func([]string, error)) {
		s.ctrl.GetProcessConfigs(name, done)
	})
	if err != nil {
		s.writeError(c, "getProcessConfigs", err)
		return
	}
	writeJSON(c, gin.H{"configs": names})
}

func (s *Server) handleGetProcessConfig(c *gin.Context) {
	name := c.Param("process")
	storage := c.Param("config")
	names, err := await(func(done func([]string, error)) {
		s.ctrl.GetProcessConfig(name, storage, done)
	})
	if err != nil {
		s.writeError(c, "getProcessConfig", err)
		return
	}
	writeJSON(c, gin.H{"options": names})
}

func optionResultBody(res controller.OptionResult) gin.H {
	return gin.H{
		"name":      res.Name,
		"value":     res.Rendered,
		"has_value": res.HasValue,
		"required":  res.Required,
		"list":      res.List,
		"system":    res.System,
	}
}

func (s *Server) handleGetProcessOption(c *gin.Context) {
	name, storage, opt := c.Param("process"), c.Param("config"), c.Param("option")
	res, err := await(func(done func(controller.OptionResult, error)) {
		s.ctrl.GetProcessOption(name, storage, opt, done)
	})
	if err != nil {
		s.writeError(c, "getProcessOption", err)
		return
	}
	writeJSON(c, optionResultBody(res))
}

// setOptionRequest is the PUT body of spec.md §6: either a single
// "value" or an "array_value" list, mutually exclusive. Numbers
// inside array_value are accepted and coerced to decimal strings.
type setOptionRequest struct {
	Value      *string       `json:"value"`
	ArrayValue []interface{} `json:"array_value"`
}

func (r setOptionRequest) toOptionValue() (option.Value, error) {
	if r.Value != nil && r.ArrayValue != nil {
		return option.Value{}, option.Err(option.InvalidDefinition, "value and array_value are mutually exclusive")
	}
	if r.Value != nil {
		return option.Single(*r.Value), nil
	}
	items := make([]string, 0, len(r.ArrayValue))
	for _, v := range r.ArrayValue {
		switch t := v.(type) {
		case string:
			items = append(items, t)
		case float64:
			items = append(items, strconv.FormatFloat(t, 'f', -1, 64))
		default:
			return option.Value{}, option.Err(option.InvalidDefinition, "unsupported array_value element type")
		}
	}
	return option.List(items...), nil
}

func (s *Server) handleSetProcessOption(c *gin.Context) {
	name, storage, opt := c.Param("process"), c.Param("config"), c.Param("option")

	var req setOptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeError(c, "setProcessOption", option.Err(option.InvalidDefinition, err.Error()))
		return
	}
	v, err := req.toOptionValue()
	if err != nil {
		s.writeError(c, "setProcessOption", err)
		return
	}

	res, err := await(func(done func(controller.OptionResult, error)) {
		s.ctrl.SetProcessOption(name, storage, opt, v, done)
	})
	if err != nil {
		s.writeError(c, "setProcessOption", err)
		return
	}
	writeJSON(c, optionResultBody(res))
}

func (s *Server) handleRemoveProcessOption(c *gin.Context) {
	name, storage, opt := c.Param("process"), c.Param("config"), c.Param("option")
	res, err := await(func(done func(controller.OptionResult, error)) {
		s.ctrl.RemoveProcessOption(name, storage, opt, done)
	})
	if err != nil {
		s.writeError(c, "removeProcessOption", err)
		return
	}
	writeJSON(c, optionResultBody(res))
}

// actionRequest is the POST /action body of spec.md §6.
type actionRequest struct {
	Action string `json:"action"`
}

func (s *Server) handleProcessAction(c *gin.Context) {
	name := c.Param("process")

	var req actionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeError(c, "processAction", option.Err(option.InvalidDefinition, err.Error()))
		return
	}

	switch req.Action {
	case "start":
		state, err := await(func(done func(process.State, error)) {
			s.ctrl.StartProcess(name, done)
		})
		if err != nil {
			s.writeError(c, "processAction", err)
			return
		}
		writeJSON(c, gin.H{"name": name, "state": state.String()})
	case "stop":
		state, err := await(func(done func(process.State, error)) {
			s.ctrl.StopProcess(name, done)
		})
		if err != nil {
			s.writeError(c, "processAction", err)
			return
		}
		writeJSON(c, gin.H{"name": name, "state": state.String()})
	default:
		s.writeError(c, "processAction", option.Err(option.InvalidDefinition, "action must be start or stop"))
	}
}

func (s *Server) handleGetProcessLog(c *gin.Context) {
	name := c.Param("process")
	lines, err := await(func(done func([]string, error)) {
		s.ctrl.GetProcessLog(name, done)
	})
	if err != nil {
		s.writeError(c, "getProcessLog", err)
		return
	}
	writeJSON(c, gin.H{"log": lines})
}

func (s *Server) handleGetPresetGroups(c *gin.Context) {
	names, err := await(s.ctrl.GetPresetGroups)
	if err != nil {
		s.writeError(c, "getPresetGroups", err)
		return
	}
	writeJSON(c, gin.H{"presets": names})
}

func (s *Server) handleGetPresets(c *gin.Context) {
	group := c.Param("group")
	g, err := await(func(done func(controller.PresetGroup, error)) {
		s.ctrl.GetPresets(group, done)
	})
	if err != nil {
		s.writeError(c, "getPresets", err)
		return
	}
	processes := make([]string, 0, len(g.Processes))
	for p := range g.Processes {
		processes = append(processes, p)
	}
	writeJSON(c, gin.H{"name": g.Name, "processes": processes})
}

// applyPresetRequest is the POST /presets body of spec.md §6.
type applyPresetRequest struct {
	Name string `json:"name"`
}

func (s *Server) handleApplyPreset(c *gin.Context) {
	var req applyPresetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeError(c, "applyPresetGroup", option.Err(option.InvalidDefinition, err.Error()))
		return
	}

	_, err := await(func(done func(struct{}, error)) {
		s.ctrl.ApplyPresetGroup(req.Name, func(err error) { done(struct{}{}, err) })
	})
	if err != nil {
		s.writeError(c, "applyPresetGroup", err)
		return
	}
	c.Status(http.StatusOK)
}
