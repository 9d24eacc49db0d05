package main

import "fmt"

// Interest mirrors the record shape /api/fetch-douban returns.
type Interest struct {
	Title      string   `json:"title"`
	Rating     float64  `json:"rating"`
	Tags       []string `json:"tags"`
	Comment    string   `json:"comment,omitempty"`
	CreateTime string   `json:"create_time"`
	Year       string   `json:"year,omitempty"`
	Type       string   `json:"type"`
}

// Sample is one prompt payload size.
type Sample struct {
	Name      string
	Interests []Interest
}

var seedMovies = []Interest{
	{Title: "霸王别姬", Rating: 5, Tags: []string{"经典", "张国荣"}, Comment: "不疯魔不成活", CreateTime: "2023-03-02 03:12:44", Year: "1993"},
	{Title: "小时代", Rating: 1, Tags: []string{"烂片"}, Comment: "看完想退票", CreateTime: "2021-07-11 21:05:10", Year: "2013"},
	{Title: "潜行者", Rating: 5, Tags: []string{"塔可夫斯基"}, CreateTime: "2024-01-19 02:40:00", Year: "1979"},
	{Title: "复仇者联盟4：终局之战", Rating: 4, Tags: []string{"漫威"}, CreateTime: "2019-04-24 23:59:59", Year: "2019"},
	{Title: "重庆森林", Rating: 5, Tags: []string{"王家卫"}, Comment: "如果记忆是一个罐头", CreateTime: "2022-11-30 04:01:00", Year: "1994"},
	{Title: "武林外传", Rating: 5, Tags: []string{"下饭"}, Comment: "第十遍", CreateTime: "2020-02-14 12:30:00", Year: "2006"},
	{Title: "咒怨", Rating: 4, Tags: []string{"恐怖"}, CreateTime: "2018-10-31 01:00:00", Year: "2002"},
	{Title: "千与千寻", Rating: 5, Tags: []string{"宫崎骏", "动画"}, CreateTime: "2017-06-01 10:00:00", Year: "2001"},
	{Title: "一出好戏", Rating: 3, Tags: []string{}, CreateTime: "2018-08-12 20:00:00", Year: "2018"},
	{Title: "撒旦探戈", Rating: 5, Tags: []string{"贝拉·塔尔"}, Comment: "七个小时", CreateTime: "2024-05-05 05:05:05", Year: "1994"},
}

// Samples grow the payload to stress prompt size and model latency.
var Samples = []Sample{
	{Name: "tiny", Interests: repeat(seedMovies, 5)},
	{Name: "typical", Interests: repeat(seedMovies, 40)},
	{Name: "full", Interests: repeat(seedMovies, 100)},
}

func repeat(seed []Interest, n int) []Interest {
	out := make([]Interest, 0, n)
	for i := 0; i < n; i++ {
		it := seed[i%len(seed)]
		if i >= len(seed) {
			it.Title = fmt.Sprintf("%s (%d)", it.Title, i/len(seed)+1)
		}
		it.Type = "movie"
		out = append(out, it)
	}
	return out
}
