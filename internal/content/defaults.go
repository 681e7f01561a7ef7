package content

import "strconv"

func DefaultOutputParams() []string {
	return []string{
		"msisdn",
		"call_uuid",
		"call_start_time",
		"call_status",
		"call_transcription",
		"result",
		"films",
	}
}

// Default returns the built-in movie/series tables.
func Default() Tables {
	entities := EntityTable{
		{Name: "movie", Flags: []Flag{{Name: "true", Patterns: []string{"фильм", "кино", "movie"}}}},
		{Name: "series", Flags: []Flag{{Name: "true", Patterns: []string{"сериал", "series"}}}},
		{Name: "dont_know", Flags: []Flag{{Name: "true", Patterns: []string{"не знаю", "без разницы", "всё равно", "все равно"}}}},
		{Name: "horror", Flags: []Flag{{Name: "true", Patterns: []string{"ужастик", "хоррор"}}}},
		{Name: "genres", Flags: []Flag{
			{Name: "комедия", Patterns: []string{"комеди"}},
			{Name: "драма", Patterns: []string{"драм"}},
			{Name: "боевик", Patterns: []string{"боевик"}},
			{Name: "ужасы", Patterns: []string{"ужас", "хоррор"}},
			{Name: "фантастика", Patterns: []string{"фантастик"}},
			{Name: "мультфильм", Patterns: []string{"мульт"}},
			{Name: "детектив", Patterns: []string{"детектив"}},
		}},
		{Name: "rating", Flags: []Flag{
			{Name: "8-10", Patterns: []string{"высок", "отличн", "лучш"}},
			{Name: "6-8", Patterns: []string{"средн", "неплох", "хорош"}},
			{Name: "1-6", Patterns: []string{"низк", "плох"}},
		}},
	}

	years := Entity{Name: "year"}
	for y := 2025; y >= 1960; y-- {
		s := strconv.Itoa(y)
		years.Flags = append(years.Flags, Flag{Name: s, Patterns: []string{s}})
	}
	entities = append(entities, years)

	return Tables{
		Entities: entities,
		Prompts: Prompts{
			"start_main":            "Здравствуйте! Я помогу подобрать фильм или сериал. Что вы хотите посмотреть?",
			"unknown_command":       "Извините, я не понял ваш запрос.",
			"ask_movie_details":     "Какой жанр, год или рейтинг фильма вас интересует?",
			"ask_tv_series_details": "Какой жанр или год сериала вас интересует?",
			"no_movies_found":       "К сожалению, я не нашёл подходящих фильмов.",
			"no_series_found":       "К сожалению, я не нашёл подходящих сериалов.",
			"hangup_goodbye":        "До свидания!",
		},
		Storage: map[string]string{
			"BASE_URL": "https://api.kinopoisk.dev/v1.4/movie",
		},
		OutputParams: DefaultOutputParams(),
	}
}
