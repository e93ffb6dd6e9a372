// Package llm 封装语言模型文本改写能力。
// 代理用它把固定模板改写成更自然的通知文案;模型不可用时必须原样返回模板,
// 任何失败都不能中断代理的评估流程。
package llm

import "context"

// Generator 文本生成器接口
// Rewrite 永不返回错误:未配置或调用失败时原样返回 prompt
type Generator interface {
	Rewrite(ctx context.Context, prompt string) string
}

// StaticGenerator 直接返回固定文本的生成器,未配置固定文本时透传 prompt
// 主要用于测试
type StaticGenerator struct {
	Text string
}

// Rewrite 返回固定文本或原始 prompt
func (g *StaticGenerator) Rewrite(_ context.Context, prompt string) string {
	if g.Text == "" {
		return prompt
	}
	return g.Text
}

// PassthroughGenerator 透传生成器,等价于未配置语言模型
type PassthroughGenerator struct{}

// Rewrite 原样返回 prompt
func (g *PassthroughGenerator) Rewrite(_ context.Context, prompt string) string {
	return prompt
}
