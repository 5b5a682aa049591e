package config

func Defaults() *Config {
	return &Config{
		General: GeneralConfig{
			DownloadDir:            "~/.spotibot/spotify_tracks",
			LogLevel:               "info",
			MaxConcurrentMessages:  5,
			MaxConcurrentDownloads: 2,
		},
		Telegram: TelegramConfig{
			Token: "${TELEGRAM_BOT_TOKEN}",
		},
		Spotify: SpotifyConfig{
			ClientID:     "${SPOTIFY_CLIENT_ID}",
			ClientSecret: "${SPOTIFY_CLIENT_SECRET}",
			SpotdlPath:   "spotdl",
			AudioFormat:  "mp3",
		},
		Store: StoreConfig{
			DBPath: "~/.spotibot/users.db",
		},
		Retention: RetentionConfig{
			Enabled:              true,
			SweepIntervalMinutes: 60,
			MaxAgeDays:           7,
		},
	}
}
