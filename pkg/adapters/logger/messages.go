package logger

import "github.com/ideamans/go-l10n"

func init() {
	l10n.Register("zh", l10n.LexiconMap{
		// Session level (info)
		"Select a region by dragging, Escape to cancel": "拖动鼠标选择区域，按 Esc 取消",
		"Region selected: %dx%d at (%d,%d)":             "已选择区域: %dx%d 位于 (%d,%d)",
		"Selection cancelled":                           "已取消选择",
		"Preview started on %s":                         "已在 %s 上开始预览",
		"Recording started":                             "开始录制",
		"Recording stopped after %s":                    "录制已停止，时长 %s",
		"Extracted %d frames":                           "共提取 %d 帧",
		"Imported %d frames (%dx%d, %d ms)":             "已导入 %d 帧 (%dx%d, %d ms)",
		"Trimmed to frames %d-%d":                       "已裁剪至第 %d-%d 帧",
		"Estimated size: %s":                            "预计大小: %s",
		"GIF exported to %s":                            "GIF 已导出到 %s",
		"Interrupted, shutting down...":                 "已中断，正在退出...",
		"Summary saved to %s":                           "摘要已保存到 %s",
		"Import cancelled":                              "已取消导入",
		"Export cancelled":                              "已取消导出",

		// Capture component
		"Opening stream %s (%dx%d)":      "正在打开视频流 %s (%dx%d)",
		"Stream closed":                  "视频流已关闭",
		"Recorder started with codec %s": "录制器已启动，编码 %s",
		"Recorder flushed %d bytes":      "录制器已写出 %d 字节",
		"Recording timer %s":             "录制时间 %s",

		// Sampler component
		"Video duration: %.2fs":                               "视频时长: %.2fs",
		"Video duration invalid, using recording time: %.2fs": "视频时长无效，使用录制时间: %.2fs",
		"Frame count: %.2f * %d = %d":                         "计算帧数: %.2f * %d = %d",
		"Frame count capped at %d":                            "帧数已限制为 %d",
		"Time %.2fs is beyond video duration, stopping":       "时间 %.2fs 超过视频时长，停止提取",
		"Extracted %d / %d frames":                            "已提取 %d / %d 帧",
		"Crop %v of %dx%d video into %dx%d":                   "裁剪 %v (视频 %dx%d) 为 %dx%d",

		// Encoder component
		"Encoding %d frames at %dx%d (quality %d, dither %s, %s palette)": "正在编码 %d 帧 %dx%d (质量 %d, 抖动 %s, %s 调色板)",
		"Encoding progress %.0f%%":                                        "编码进度 %.0f%%",
		"Encoded %d bytes":                                                "已编码 %d 字节",

		// Import component
		"Skipping frame %d: %s": "跳过第 %d 帧: %s",

		// Playback component
		"Playback started at %d ms per frame": "开始播放，每帧 %d ms",
		"Playback stopped at frame %d":        "播放停止于第 %d 帧",

		// Warnings
		"Debug output failed: %s":            "调试输出失败: %s",
		"Failed to grab preview: %s":         "获取预览画面失败: %s",
		"Failed to release capture: %s":      "释放屏幕捕获失败: %s",
		"Failed to write summary: %s":        "写入摘要失败: %s",
		"Keeping default playback speed: %s": "保持默认播放速度: %s",

		// Errors
		"Failed to select region: %s":  "选择区域失败: %s",
		"Failed to open capture: %s":   "打开屏幕捕获失败: %s",
		"Failed to record: %s":         "录制失败: %s",
		"Failed to extract frames: %s": "视频处理失败: %s",
		"Failed to import GIF: %s":     "导入 GIF 失败: %s",
		"Failed to export GIF: %s":     "导出失败: %s",
	})
}
