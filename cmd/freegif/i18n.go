package main

import (
	"github.com/ideamans/go-l10n"
)

func init() {
	// Register Chinese translations for CLI messages.
	l10n.Register("zh", l10n.LexiconMap{
		// Root command
		"Record a screen region and save it as an animated GIF": "录制屏幕区域并保存为 GIF 动画",
		"Configuration file (YAML or TOML)":                     "配置文件 (YAML 或 TOML)",
		"Log level (debug, info, warn, error)":                  "日志级别 (debug, info, warn, error)",
		"Suppress all log output":                               "不输出任何日志",
		"Interrupted, shutting down...":                         "已中断，正在退出...",

		// Record command
		"Record a screen region and export it as a GIF":            "录制屏幕区域并导出为 GIF",
		"Region to capture as X,Y,W,H in logical pixels":           "录制区域 X,Y,W,H (逻辑像素)",
		"Stop recording after this long (default: wait for Enter)": "录制时长 (默认按 Enter 停止)",
		"Frames sampled per second of recording":                   "每秒采样帧数",
		"Maximum number of sampled frames":                         "最大采样帧数",
		"Use a fixed 100 ms frame delay instead of 1000/fps":       "使用固定 100 ms 帧延迟代替 1000/fps",
		"Recording codec passed to ffmpeg":                         "传给 ffmpeg 的录制编码",
		"Path to the ffmpeg binary":                                "ffmpeg 可执行文件路径",
		"Logical display size as WxH":                              "逻辑显示尺寸 WxH",
		"Display scale factor (device pixels per logical pixel)":   "显示缩放比例 (每逻辑像素的设备像素)",
		"Show a preview snapshot before recording":                 "录制前显示预览画面",
		"Recording. Press Enter to stop.":                          "正在录制，按 Enter 停止。",
		"Recording for %s.":                                        "正在录制 %s。",

		// Import and estimate commands
		"Import an animated GIF, edit it and export it again": "导入 GIF 动画，编辑后重新导出",
		"Estimate the export size of a GIF under each preset": "估算 GIF 在各预设下的导出大小",
		"a GIF path is required":                              "需要指定 GIF 路径",
		"current":                                             "当前",

		// Presets and version commands
		"List the quality presets": "列出质量预设",
		"Show version information": "显示版本信息",
		"freegif version %s":       "freegif 版本 %s",

		// Output flags
		"Output GIF path (prompted when omitted)":         "输出 GIF 路径 (省略时询问)",
		"Overwrite an existing output file":               "覆盖已存在的输出文件",
		"Write a Markdown export summary next to the GIF": "在 GIF 旁写出 Markdown 导出摘要",

		// Encoding flags
		"Quality preset (high, medium, low)":                     "质量预设 (high, medium, low)",
		"Quality percent (0-100, overrides preset)":              "质量百分比 (0-100，覆盖预设)",
		"Dither mode (off, FloydSteinberg, FalseFloydSteinberg)": "抖动模式 (off, FloydSteinberg, FalseFloydSteinberg)",
		"Alternate scan direction while dithering":               "抖动时交替扫描方向",
		"Palette mode (local, global)":                           "调色板模式 (local, global)",
		"Resolution scale (0-1]":                                 "分辨率缩放 (0-1]",
		"Parallel palette workers":                               "并行调色板工作数",

		// Editing flags
		"Keep frames START-END (1-based, inclusive)":       "保留第 START-END 帧 (从 1 开始，含两端)",
		"Frame delay in milliseconds":                      "帧延迟 (毫秒)",
		"Play the frames in the terminal before exporting": "导出前在终端中播放",
		"Playback speed multiplier":                        "播放速度倍数",

		// Debug flags
		"Enable debug output":        "启用调试输出",
		"Directory for debug output": "调试输出目录",

		// Progress
		"Extracting frames": "正在提取帧",
		"Importing frames":  "正在导入帧",
		"Encoding frames":   "正在编码帧",
		"Writing GIF":       "正在写入 GIF",

		// Tables
		"Size":       "大小",
		"Frames":     "帧数",
		"Resolution": "分辨率",
	})
}
