package bot

// Static reply texts. Markdown, Telegram flavor.
const (
	welcomeText = "🎵 *Welcome to the Now Playing Bot!*\n\n" +
		"I can automatically post the YouTube videos you're watching to your Telegram channel.\n\n" +
		"*Quick Setup:*\n" +
		"1. Create a channel and add me as admin\n" +
		"2. Use /getchannelid to get your channel ID\n" +
		"3. Configure your now-playing source with that channel ID\n\n" +
		"*Customize Your Messages:*\n" +
		"• /setformat - Change message format\n" +
		"• /setemoji - Change emoji\n" +
		"• /preview - See how your messages will look\n" +
		"• /myconfig - View your current settings\n\n" +
		"*Other Commands:*\n" +
		"• /help - Full instructions\n" +
		"• /support - Get help\n\n" +
		"Let's get started! 🚀"

	helpText = "*📚 Complete Guide*\n\n" +
		"*Step 1: Setup*\n" +
		"1. Create a Telegram channel\n" +
		"2. Add this bot as admin (with \"Post Messages\")\n" +
		"3. Use /getchannelid to get your channel ID\n" +
		"4. Point your now-playing source at that channel ID\n\n" +
		"*Step 2: Customize (Optional)*\n" +
		"• /setformat - Set message text (e.g., \"now playing\", \"listening to\")\n" +
		"• /setemoji - Set emoji (e.g., 🎵, 🎧, 📻)\n" +
		"• /preview - Preview how messages will look\n\n" +
		"*Configuration Commands:*\n" +
		"/setformat - Change your message format\n" +
		"/setemoji - Change your emoji\n" +
		"/preview - Preview your messages\n" +
		"/myconfig - View current settings\n" +
		"/reset - Reset to default settings\n" +
		"/cancel - Cancel an open dialog\n\n" +
		"*Utility Commands:*\n" +
		"/getchannelid - Get your channel ID\n" +
		"/help - Show this message\n" +
		"/support - Contact support"

	supportText = "*💬 Need Help?*\n\n" +
		"*Common Issues:*\n" +
		"1. Bot not posting? Check it's admin with \"Post Messages\"\n" +
		"2. Wrong channel ID? Use /getchannelid\n\n" +
		"*Resources:*\n" +
		"• All commands: /help\n" +
		"• Get channel ID: /getchannelid"

	channelIDText = "*🆔 Get Your Channel ID*\n\n" +
		"*Method 1: Use This Bot*\n" +
		"1. Add me as admin to your channel\n" +
		"2. Post any message in the channel\n" +
		"3. I'll automatically detect it and tell you the ID\n\n" +
		"*Method 2: Web Telegram*\n" +
		"1. Go to web.telegram.org\n" +
		"2. Open your channel\n" +
		"3. Check the URL for the number after #\n\n" +
		"*Your channel ID starts with -100*"

	channelDetectedText = "✅ *Bot Added Successfully!*\n\n" +
		"*Channel:* %s\n" +
		"*Channel ID:* `%d`\n\n" +
		"Use this ID as the destination for your now-playing notifications!"

	previewFrame = "*📱 Message Preview*\n\n" +
		"This is how your messages will appear:\n\n" +
		"─────────────────\n" +
		"%s\n" +
		"─────────────────\n\n" +
		"Like it? Use /setformat or /setemoji to change!"

	myConfigText = "*⚙️ Your Current Settings*\n\n" +
		"*Emoji:* %s\n" +
		"*Message Format:* `%s`\n\n" +
		"*Commands to Change:*\n" +
		"• /setformat - Change message text\n" +
		"• /setemoji - Change emoji\n" +
		"• /preview - See how it looks\n" +
		"• /reset - Reset to defaults"

	resetText = "🔄 *Settings Reset!*\n\n" +
		"Your configuration has been reset to:\n" +
		"• Emoji: 🎵\n" +
		"• Format: `now playing`\n\n" +
		"Use /preview to see it!"

	saveFailedText   = "⚠️ Could not save settings, try again."
	lookupFailedText = "⚠️ Could not load settings, try again."
)
