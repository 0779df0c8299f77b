package vcp

// builtins is the static command table. Values follow the MCCS assignments
// observed in the wild; a monitor typically supports a subset, check its
// capability string.
func builtins() []Command {
	return []Command{
		{
			Code:        CodeFactoryReset,
			Name:        "factory_reset",
			Description: "restore factory defaults",
			Kind:        Integer,
			Writable:    true,
		},
		{
			Code:        CodeLuminance,
			Name:        "luminance",
			Description: "luminance/brightness",
			Kind:        Integer,
			Readable:    true,
			Writable:    true,
		},
		{
			Code:        CodeContrast,
			Name:        "contrast",
			Description: "contrast",
			Kind:        Integer,
			Readable:    true,
			Writable:    true,
		},
		{
			Code:        CodeColorPreset,
			Name:        "color_preset",
			Description: "active color preset",
			Kind:        Enumerated,
			Readable:    true,
			Writable:    true,
			Params: map[string]uint16{
				"srgb":   1,
				"native": 2,
				"4000k":  3,
				"5000k":  4,
				"6500k":  5,
				"7500k":  6,
				"8200k":  7,
				"9300k":  8,
				"10000k": 9,
				"11500k": 10,
				"user1":  11,
				"user2":  12,
				"user3":  13,
			},
		},
		{
			Code:        CodeInputSource,
			Name:        "input_source",
			Description: "active input source",
			Kind:        Enumerated,
			Readable:    true,
			Writable:    true,
			Params: map[string]uint16{
				"analog1":    1,
				"analog2":    2,
				"dvi1":       3,
				"dvi2":       4,
				"composite1": 5,
				"composite2": 6,
				"svideo1":    7,
				"svideo2":    8,
				"tuner1":     9,
				"tuner2":     10,
				"tuner3":     11,
				"component1": 12,
				"component2": 13,
				"component3": 14,
				"dp1":        15,
				"dp2":        16,
				"hdmi1":      17,
				"hdmi2":      18,
				// 27 is the "standard non-standard" USB-C ID among
				// manufacturers.
				"usbc": 27,
			},
		},
		{
			Code:        CodeOrientation,
			Name:        "image_orientation",
			Description: "image orientation",
			Kind:        Enumerated,
			Readable:    true,
			Params: map[string]uint16{
				"default":   1,
				"rotate90":  2,
				"rotate180": 3,
				"rotate270": 4,
			},
		},
		{
			Code:        CodePowerMode,
			Name:        "power_mode",
			Description: "power mode/state",
			Kind:        Enumerated,
			Readable:    true,
			Writable:    true,
			Params: map[string]uint16{
				"on":       1,
				"standby":  2,
				"suspend":  3,
				"off_soft": 4,
				"off_hard": 5,
			},
		},
	}
}
