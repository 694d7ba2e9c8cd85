package mocks

//go:generate mockgen -source=../port/prompt/prompt.go -destination=mock_prompt.go -package=mocks
//go:generate mockgen -source=../port/eventbus/eventbus.go -destination=mock_eventbus.go -package=mocks
