// Package command provides the command grammar and parser and the registry
// of built-in commands with their help text.
package command

// Command describes a player-invocable command.
type Command struct {
	// Name is the canonical command name, the Verb of a parsed Result.
	Name string
	// Aliases are alternate spellings accepted by the grammar.
	Aliases []string
	// Section is the table the command belongs to.
	Section Section
	// Usage is the command syntax shown in help.
	Usage string
	// Help explains what the command does.
	Help string
}

// BuiltinCommands returns all built-in commands for the game.
func BuiltinCommands() []Command {
	return []Command{
		// Actions
		{Name: "look", Aliases: []string{"l"}, Section: Actions,
			Usage: "look [at] [<item>|<player>|<mob>|<room>|<exit>]",
			Help:  "Examine some object, player, room, etc more closely. With nothing named, look around the room."},
		{Name: "info", Section: Actions,
			Usage: "info [<item>|<player>|<mob>|<room>|<exit>]",
			Help:  "Get more info about the given object, or about yourself if none is given."},
		{Name: "time", Section: Actions,
			Usage: "time",
			Help:  "Show the current time according to the game server."},
		{Name: "get", Section: Actions,
			Usage: "get [the] <item> | get all | get <n> coins",
			Help:  "Pick up something and put it in your inventory."},
		{Name: "drop", Section: Actions,
			Usage: "drop <item> | drop all | drop <n> coins",
			Help:  "Drop something from your inventory."},
		{Name: "put", Section: Actions,
			Usage: "put <item> in <container>",
			Help:  "Put some item inside of a container."},
		{Name: "take", Section: Actions,
			Usage: "take [<n>] <item> from <container>",
			Help:  "Remove some item from inside of a container."},
		{Name: "use", Section: Actions,
			Usage: "use <item> [on <object>]",
			Help:  "Use the given item, if that makes sense. Use it on the other object if one is named."},
		{Name: "inventory", Aliases: []string{"inv", "i"}, Section: Actions,
			Usage: "inventory",
			Help:  "Look at what you are holding in your inventory."},
		{Name: "wear", Section: Actions,
			Usage: "wear <item>",
			Help:  "Don some wearable item from your inventory."},
		{Name: "remove", Section: Actions,
			Usage: "remove <item> | remove <item> from <container>",
			Help:  "Remove some wearable item that you are wearing, or take an item out of a container."},
		{Name: "go", Aliases: []string{"enter"}, Section: Actions,
			Usage: "go [to] <exit>",
			Help:  "Go through the given exit. Typing the name of an exit by itself also works."},
		{Name: "lock", Section: Actions,
			Usage: "lock <door> [with <key>]",
			Help:  "Lock the door, if you have the correct key."},
		{Name: "unlock", Section: Actions,
			Usage: "unlock <door> [with <key>]",
			Help:  "Unlock the door, if you have the correct key."},
		{Name: "follow", Section: Actions,
			Usage: "follow <player>|<mob>",
			Help:  "Follow the given character. Follow yourself to stop following."},
		{Name: "exits", Section: Actions,
			Usage: "exits",
			Help:  "List the room's visible exits."},
		{Name: "say", Aliases: []string{`"`}, Section: Actions,
			Usage: "say <text>",
			Help:  "Say something to everyone in the same room."},
		{Name: "shout", Section: Actions,
			Usage: "shout <text>",
			Help:  "Shout something to everyone in the same room and to the rooms nearby."},
		{Name: "emote", Aliases: []string{":"}, Section: Actions,
			Usage: "emote <text>",
			Help:  "Show some kind of emotion or pose."},
		{Name: "listen", Section: Actions,
			Usage: "listen [to] <object>",
			Help:  "Put your ear up to some object to see if you can hear something."},
		{Name: "quit", Section: Actions,
			Usage: "quit",
			Help:  "Disconnect from the mud."},
		{Name: "who", Section: Actions,
			Usage: "who",
			Help:  "List players connected now."},
		{Name: "set", Section: Actions,
			Usage: "set [<var> [= <value>]]",
			Help:  "Set the given variable to the value, or to true. With no variable, list your settings."},
		{Name: "unset", Section: Actions,
			Usage: "unset <var>",
			Help:  "Clear the given variable."},
		{Name: "stats", Section: Actions,
			Usage: "stats",
			Help:  "Show the values of all character statistics."},
		{Name: "password", Section: Actions,
			Usage: "password <old password> <new password>",
			Help:  "Change from old password to new password."},
		{Name: "help", Aliases: []string{"?"}, Section: Actions,
			Usage: "help [<subject>]",
			Help:  "Get help on some subject, or list the commands if none is given."},

		// Wizard
		{Name: "teleport", Section: Wizard,
			Usage: "@teleport [<room>|<player>] | @teleport <object> to <room>",
			Help:  "Teleport yourself to the named room or player, or home if none is given. Or send the object to the room."},
		{Name: "dig", Section: Wizard,
			Usage: "@dig <exit> to <destination> [return by <exit>]",
			Help:  "Connect an exit to a room, creating the room when none has that name, and optionally an exit back to here."},
		{Name: "lock", Section: Wizard,
			Usage: "@lock <exit> with <key>",
			Help:  "Make the key fit the exit and its linked twin."},
		{Name: "list", Section: Wizard,
			Usage: "@list players|items|rooms|mobs|exits",
			Help:  "List all objects of the given type."},
		{Name: "clone", Section: Wizard,
			Usage: "@clone <class>|<object> [as <name>]",
			Help:  "Create an instance of the class, or a copy of the object, optionally with a new name."},
		{Name: "study", Section: Wizard,
			Usage: "@study <class>",
			Help:  "Show the documentation and settings of a class."},
		{Name: "rename", Section: Wizard,
			Usage: "@rename [<object>] to <new name>",
			Help:  "Set the name of the object, or of the room if none is given."},
		{Name: "short", Section: Wizard,
			Usage: "@short [for] [<object>] is <text>",
			Help:  "Set the short description of the object, or of the room if none is given."},
		{Name: "long", Section: Wizard,
			Usage: "@long [for] [<object>] is <text>",
			Help:  "Set the long description of the object, or of the room if none is given."},
		{Name: "destroy", Section: Wizard,
			Usage: "@destroy <object>",
			Help:  "Destroy the object."},
		{Name: "set", Section: Wizard,
			Usage: "@set <setting> [= <value>] on <object>",
			Help:  "Show or change a setting of the object."},
		{Name: "unset", Section: Wizard,
			Usage: "@unset <setting> on <object>",
			Help:  "Restore a setting of the object to its default."},
		{Name: "help", Section: Wizard,
			Usage: "@help [<subject>]",
			Help:  "Get help on some wizard command, or list them if none is given."},

		// Admin
		{Name: "admin", Section: Admin,
			Usage: "!admin <player>",
			Help:  "Make the player an admin."},
		{Name: "wizard", Section: Admin,
			Usage: "!wizard <player>",
			Help:  "Make the player a wizard."},
		{Name: "db", Section: Admin,
			Usage: "!db [<section>]",
			Help:  "Show the contents of the database, or of one catalog."},
		{Name: "backup", Section: Admin,
			Usage: "!backup",
			Help:  "Create a backup of the database named after the current time."},
		{Name: "backups", Section: Admin,
			Usage: "!backups",
			Help:  "List the available backups."},
		{Name: "restart", Section: Admin,
			Usage: "!restart [<delay>]",
			Help:  "Restart the server after the delay in seconds."},
		{Name: "shutdown", Section: Admin,
			Usage: "!shutdown [<delay>]",
			Help:  "Shut down the server after the delay in seconds."},
		{Name: "fresh", Section: Admin,
			Usage: "!fresh",
			Help:  "Rebuild the world from the seed file and restart."},
		{Name: "rollback", Section: Admin,
			Usage: "!rollback [<backup>]",
			Help:  "Restore the latest or the named backup and restart."},
		{Name: "nudge", Section: Admin,
			Usage: "!nudge",
			Help:  "Give all of the mobs and rooms a nudge to get them started again."},
		{Name: "help", Section: Admin,
			Usage: "!help [<subject>]",
			Help:  "Get help on some admin command, or list them if none is given."},
	}
}
